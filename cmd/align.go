package cmd

import (
	"github.com/darn-seq/darn/internal/darn"
	"github.com/spf13/cobra"
)

var (
	targetHelp = `FASTA holding the target sequence. The first record is used unless
--target-name picks another.`

	queryHelp = `FASTA holding the query sequence. The first record is used unless
--query-name picks another.`
)

// alignCmd is for mapping a query sequence against a target sequence
var alignCmd = &cobra.Command{
	Use:                        "align",
	Short:                      "Align a query sequence against a target and rank the candidates",
	Run:                        darn.AlignCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Map one query sequence against one target sequence with minimap2 and
rank the alignments by how much of the pair they cover. The PAF output is
kept next to a digest of the inputs, so rerunning with --reuse skips the
aligner when nothing changed.`,
}

// set flags
func init() {
	alignCmd.Flags().StringP("target", "t", "", targetHelp)
	alignCmd.Flags().StringP("query", "q", "", queryHelp)
	alignCmd.Flags().StringP("target-name", "T", "", "target sequence name")
	alignCmd.Flags().StringP("query-name", "Q", "", "query sequence name")
	alignCmd.Flags().Bool("rc-target", false, "align against the reverse complement of the target")
	alignCmd.Flags().Bool("rc-query", false, "align the reverse complement of the query")
	alignCmd.Flags().StringP("preset", "x", "", "minimap2 preset (asm10 unless set)")
	alignCmd.Flags().Int("threads", 0, "minimap2 threads (4 unless set)")
	alignCmd.Flags().StringP("paf", "o", "", "PAF output path (derived unless set)")
	alignCmd.Flags().BoolP("reuse", "r", false, "reuse an existing PAF for the same inputs")
	alignCmd.MarkFlagRequired("target")
	alignCmd.MarkFlagRequired("query")

	RootCmd.AddCommand(alignCmd)
}
