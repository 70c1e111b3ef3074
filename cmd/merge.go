package cmd

import (
	"github.com/darn-seq/darn/internal/darn"
	"github.com/spf13/cobra"
)

var donorHelp = `t or q: which sequence donates this region of the merge`

// mergeCmd is for joining two sequences across their best alignment
var mergeCmd = &cobra.Command{
	Use:                        "merge",
	Short:                      "Merge a target and query sequence across their best alignment",
	Run:                        darn.MergeCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Align a query against a target, take the best candidate, and join the
two sequences across it. The aligned overlap and the regions both sides
share can each come from either sequence; bases only one side has are
always kept. The merged FASTA is written with a markdown and JSON audit
recording where every region came from.`,
}

// set flags
func init() {
	mergeCmd.Flags().StringP("target", "t", "", targetHelp)
	mergeCmd.Flags().StringP("query", "q", "", queryHelp)
	mergeCmd.Flags().StringP("target-name", "T", "", "target sequence name")
	mergeCmd.Flags().StringP("query-name", "Q", "", "query sequence name")
	mergeCmd.Flags().Bool("rc-target", false, "merge against the reverse complement of the target")
	mergeCmd.Flags().Bool("rc-query", false, "merge the reverse complement of the query")
	mergeCmd.Flags().StringP("preset", "x", "", "minimap2 preset (asm10 unless set)")
	mergeCmd.Flags().Int("threads", 0, "minimap2 threads (4 unless set)")
	mergeCmd.Flags().String("paf", "", "PAF path (derived unless set)")
	mergeCmd.Flags().BoolP("reuse", "r", false, "reuse an existing PAF for the same inputs")
	mergeCmd.Flags().StringP("out", "o", "", "output FASTA (derived from the pair unless set)")
	mergeCmd.Flags().String("name", "", "merged record name (target+query unless set)")
	mergeCmd.Flags().String("left", "t", donorHelp)
	mergeCmd.Flags().String("overlap", "t", donorHelp)
	mergeCmd.Flags().String("right", "t", donorHelp)
	mergeCmd.MarkFlagRequired("target")
	mergeCmd.MarkFlagRequired("query")

	RootCmd.AddCommand(mergeCmd)
}
