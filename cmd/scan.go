package cmd

import (
	"github.com/darn-seq/darn/internal/darn"
	"github.com/spf13/cobra"
)

// gapsCmd is for finding unresolved gaps
var gapsCmd = &cobra.Command{
	Use:                        "gaps",
	Short:                      "List runs of N bases in an assembly",
	Run:                        darn.GapsCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Scan each sequence for runs of N bases at least the minimum length and
list them with half-open coordinates. These are the unresolved joins a
curation pass usually starts from.`,
}

// telomereCmd is for checking whether chromosome ends look complete
var telomereCmd = &cobra.Command{
	Use:                        "telomere",
	Short:                      "Report the telomeric signal at both ends of each sequence",
	Run:                        darn.TelomereCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Look for back-to-back copies of the telomeric repeat (either strand) at
both ends of each sequence and report copy counts, the covered span, and
an estimate of mutated bases inside it. An end counts as telomeric once a
single run reaches the minimum repeat count.`,
}

// set flags
func init() {
	gapsCmd.Flags().StringP("in", "i", "", "input FASTA")
	gapsCmd.Flags().String("name", "", "scan only this sequence")
	gapsCmd.Flags().Int("min-gap", 0, "minimum run of Ns reported (10 unless set)")
	gapsCmd.MarkFlagRequired("in")

	telomereCmd.Flags().StringP("in", "i", "", "input FASTA")
	telomereCmd.Flags().String("name", "", "scan only this sequence")
	telomereCmd.Flags().String("motif", "", "telomeric repeat probe (CCCTAA unless set)")
	telomereCmd.Flags().Int("window", 0, "bases scanned at each end (the whole arm unless set)")
	telomereCmd.Flags().Int("min-repeats", 0, "back-to-back copies required (15 unless set)")
	telomereCmd.MarkFlagRequired("in")

	RootCmd.AddCommand(gapsCmd)
	RootCmd.AddCommand(telomereCmd)
}
