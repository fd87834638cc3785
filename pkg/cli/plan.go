package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/flare/pkg/codegen/buildscript"
)

func newPlanCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "plan [descriptor]",
		Short: "Print the build wiring a descriptor requires",
		Long: "Plan prints the repositories, dependencies and generated source and resource\n" +
			"directories a host build must declare for the descriptor. Nothing is generated.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.loadDescriptor(descriptorPath(args), nil)
			if err != nil {
				return err
			}

			plan, err := d.BuildPlan()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(plan); err != nil {
					return err
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			default:
				gen, err := buildscript.DefaultRegistry().Get(format)
				if err != nil {
					return fmt.Errorf("unknown format %q: expected yaml, json, gradle or maven", format)
				}
				snippet, err := gen.Render(plan)
				if err != nil {
					return err
				}
				_, err = out.Write(snippet)
				return err
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml, json, gradle or maven")
	return cmd
}
