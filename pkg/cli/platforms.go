package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/flare/pkg/codegen/platforms"
)

func newPlatformsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List supported platforms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tADAPTER\tMANIFEST\tREPOSITORY")
			for _, md := range platforms.List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", md.Kind, md.ClassName(), md.ManifestFile, md.RepositoryURL)
			}
			return tw.Flush()
		},
	}
}
