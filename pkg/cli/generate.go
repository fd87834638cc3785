package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/platinummonkey/flare/pkg/codegen"
	"github.com/platinummonkey/flare/pkg/descriptor"
	"github.com/platinummonkey/flare/pkg/observability"
)

type generateOptions struct {
	output      string
	sourceDirs  []string
	metricsFile string
}

func newGenerateCmd(a *app) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [descriptor]",
		Short: "Generate manifests and adapter sources",
		Long: "Generate reads a plugin descriptor (default flare.yaml) and writes one manifest\n" +
			"and one adapter source per target platform below <output>/generated.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, descriptorPath(args), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", ".", "output root; files are written below <output>/generated")
	f.StringSliceVar(&opts.sourceDirs, "source-dir", nil, "source directory expected to contain the entry point (repeatable)")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format after the run")
	f.String("archive-dir", "", "also store the generated tree as <fingerprint>.tar.gz in this directory")
	f.String("s3-bucket", "", "also store the generated tree in this S3 bucket")
	f.Int("max-workers", 0, "maximum number of platforms rendered concurrently")

	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, path string, opts *generateOptions) (err error) {
	ctx := cmd.Context()

	d, err := a.loadDescriptor(path, opts.sourceDirs)
	if err != nil {
		return err
	}

	svc, err := a.newServices(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(ctx); cerr != nil {
			a.logger.WithError(cerr).Warn("failed to release resources")
		}
	}()

	if opts.metricsFile != "" {
		// written on failure too so CI can scrape the failure counters
		defer func() {
			if werr := observability.WriteTextfile(svc.metrics.Registry(), opts.metricsFile); werr != nil && err == nil {
				err = fmt.Errorf("writing metrics file: %w", werr)
			}
		}()
	}

	result, err := svc.engine.Generate(ctx, d, opts.output)
	if result != nil {
		if perr := printWritten(cmd.OutOrStdout(), opts.output, result); perr != nil && err == nil {
			err = perr
		}
	}
	if err != nil {
		return err
	}

	stored, err := svc.archive(ctx, d, result.Fingerprint)
	for _, s := range stored {
		a.logger.WithFields(logrus.Fields{
			"location": s.Location,
			"sha256":   s.Hash,
		}).Info("archived generated tree")
		fmt.Fprintf(cmd.OutOrStdout(), "archived %s\n", s.Location)
	}
	return err
}

// loadDescriptor reads and fully validates a descriptor as a build host would
func (a *app) loadDescriptor(path string, sourceDirs []string) (*descriptor.PluginDescriptor, error) {
	d, err := descriptor.Load(path)
	if err != nil {
		return nil, err
	}

	d = d.WithDefaults(a.cfg.ProjectDefaults())
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if len(sourceDirs) > 0 {
		if _, err := descriptor.LocateEntryPoint(sourceDirs, d.EntryPoint); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func printWritten(w io.Writer, root string, result *codegen.Result) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, a := range result.Artifacts {
		platform := string(a.Platform)
		if platform == "" {
			platform = "shared"
		}
		display := a.Path
		if rel, err := filepath.Rel(absRoot, a.Path); err == nil {
			display = filepath.ToSlash(rel)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", platform, a.Kind, display)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	cached := ""
	if result.CacheHit {
		cached = ", cached"
	}
	_, err = fmt.Fprintf(w, "wrote %d file(s) in %s (fingerprint %.12s%s)\n",
		len(result.Artifacts), result.Duration.Round(time.Microsecond), result.Fingerprint, cached)
	return err
}
