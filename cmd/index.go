package cmd

import (
	"github.com/darn-seq/darn/internal/darn"
	"github.com/spf13/cobra"
)

// indexCmd is for building a sidecar index and listing what it covers
var indexCmd = &cobra.Command{
	Use:                        "index",
	Short:                      "Index a FASTA and list its sequences",
	Run:                        darn.IndexCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Build (or load) the sidecar index for a FASTA file and list every
sequence with its length and layout. The index makes later range fetches
seek straight to the requested bases instead of reading the whole file.

Compressed inputs cannot carry a sidecar index; they are read into memory
instead and no index file is written.`,
}

// set flags
func init() {
	indexCmd.Flags().StringP("in", "i", "", "input FASTA")
	indexCmd.MarkFlagRequired("in")

	RootCmd.AddCommand(indexCmd)
}
