package cmd

import (
	"github.com/darn-seq/darn/internal/darn"
	"github.com/spf13/cobra"
)

var segmentHelp = `segment to append, as source:name:start:end[:rc]. Repeatable; the merge
concatenates segments in flag order. Sources are t and q (from --target
and --query) plus any keys registered with --source.`

// stitchCmd is for merging manually chosen segments
var stitchCmd = &cobra.Command{
	Use:                        "stitch",
	Short:                      "Merge manually chosen segments with junction checks",
	Run:                        darn.StitchCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Build a merged sequence from hand-picked coordinate ranges. Every
junction between adjacent segments is checked for consistency: the bases
each side claims before and after the join point are compared and the
verdicts land in the audit logs next to the output. Reversed segments use
coordinates on the flipped sequence.

With --check the junction reports are printed and nothing is written.`,
}

// set flags
func init() {
	stitchCmd.Flags().StringP("target", "t", "", "FASTA registered as source t")
	stitchCmd.Flags().StringP("query", "q", "", "FASTA registered as source q")
	stitchCmd.Flags().StringArray("source", nil, "extra source as key=path (repeatable)")
	stitchCmd.Flags().StringArrayP("segment", "g", nil, segmentHelp)
	stitchCmd.Flags().StringP("out", "o", "", "output FASTA")
	stitchCmd.Flags().String("name", "", "merged record name (stitched unless set)")
	stitchCmd.Flags().Int("context", 0, "flanking bases around each junction (200 unless set)")
	stitchCmd.Flags().Bool("check", false, "print junction reports without writing anything")
	stitchCmd.Flags().Bool("confirm", false, "show the junction reports and ask before writing")
	stitchCmd.MarkFlagRequired("segment")

	RootCmd.AddCommand(stitchCmd)
}
