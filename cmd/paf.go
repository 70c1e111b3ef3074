package cmd

import (
	"github.com/darn-seq/darn/internal/darn"
	"github.com/spf13/cobra"
)

// pafCmd is for inspecting alignments that already exist on disk
var pafCmd = &cobra.Command{
	Use:                        "paf",
	Short:                      "Rank the alignments in an existing PAF file",
	Run:                        darn.PafCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Parse a PAF file and rank its alignments by overlap. Rows can be
narrowed to one target and/or query sequence name; malformed rows are
skipped the way alignment consumers usually do.`,
}

// mapCmd is for projecting query coordinates onto the target
var mapCmd = &cobra.Command{
	Use:                        "map [position] ... [positionN]",
	Short:                      "Project query positions onto the target through an alignment",
	Run:                        darn.MapCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Walk the best alignment's operation string and report, for each query
position, the matching target position or the reason there is none
(insertion, outside the aligned span, no operations).`,
}

// set flags
func init() {
	pafCmd.Flags().StringP("in", "i", "", "input PAF")
	pafCmd.Flags().StringP("target", "t", "", "keep rows for this target sequence name")
	pafCmd.Flags().StringP("query", "q", "", "keep rows for this query sequence name")
	pafCmd.Flags().IntP("limit", "n", 0, "keep only the top candidates (all when 0)")
	pafCmd.MarkFlagRequired("in")

	mapCmd.Flags().StringP("in", "i", "", "input PAF")
	mapCmd.Flags().StringP("target", "t", "", "keep rows for this target sequence name")
	mapCmd.Flags().StringP("query", "q", "", "keep rows for this query sequence name")
	mapCmd.MarkFlagRequired("in")

	RootCmd.AddCommand(pafCmd)
	RootCmd.AddCommand(mapCmd)
}
