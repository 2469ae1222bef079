package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/soyforge/pkg/config"
	"github.com/arthur-debert/soyforge/pkg/driver"
	"github.com/arthur-debert/soyforge/pkg/logging"
	"github.com/arthur-debert/soyforge/pkg/output"
)

func newBuildCmd(opts *globalOptions) *cobra.Command {
	var (
		workers    int
		createDirs bool
	)

	cmd := &cobra.Command{
		Use:     "build",
		Short:   MsgBuildShort,
		Long:    MsgBuildLong,
		Example: MsgBuildExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cli.build")

			overrides := map[string]interface{}{}
			if cmd.Flags().Changed("workers") {
				overrides["output.workers"] = workers
			}
			if cmd.Flags().Changed("create-dirs") {
				overrides["output.create_dirs"] = createDirs
			}

			m, err := opts.loadManifest(overrides)
			if err != nil {
				return err
			}
			logger.Info().
				Strs("manifests", m.Files).
				Int("artifacts", len(m.Artifacts)).
				Bool("dryRun", opts.dryRun).
				Msg("Starting build")

			d, err := driver.FromManifest(m, driver.WithWriter(&output.Writer{
				DryRun:     opts.dryRun,
				CreateDirs: m.Output.CreateDirs,
			}))
			if err != nil {
				return err
			}
			report, err := d.Run()
			if err != nil {
				return err
			}

			printReport(cmd, m, report)
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 1, MsgFlagWorkers)
	cmd.Flags().BoolVar(&createDirs, "create-dirs", false, MsgFlagCreateDirs)
	return cmd
}

func printReport(cmd *cobra.Command, m *config.Manifest, report *driver.Report) {
	out := cmd.OutOrStdout()
	dryRun := false
	for _, a := range report.Artifacts {
		format := MsgArtifactWritten
		if a.DryRun {
			format = MsgArtifactDryRun
			dryRun = true
		}
		_, _ = fmt.Fprintf(out, format, relPath(m.Dir, a.Path), a.Template, a.Bytes, a.Encoding)
	}
	_, _ = fmt.Fprintf(out, MsgBuildSummary,
		len(report.Artifacts), report.TotalBytes(), report.Duration.Round(time.Millisecond))
	if dryRun {
		_, _ = fmt.Fprintln(out, MsgDryRunNotice)
	}
}

func relPath(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
