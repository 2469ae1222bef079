package cli

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/soyforge/internal/version"
	"github.com/arthur-debert/soyforge/pkg/cobrax/topics"
	"github.com/arthur-debert/soyforge/pkg/config"
	"github.com/arthur-debert/soyforge/pkg/driver"
	"github.com/arthur-debert/soyforge/pkg/logging"
)

//go:embed topics/*.md
var topicsFS embed.FS

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	verbosity  int
	configFile string
	dryRun     bool
}

// loadManifest reads the manifest named by --config (or found in the
// working directory) with overrides applied on top
func (o *globalOptions) loadManifest(overrides map[string]interface{}) (*config.Manifest, error) {
	return config.Load(config.Options{File: o.configFile, Overrides: overrides})
}

// compile loads the manifest and compiles its sources without rendering
func (o *globalOptions) compile() (*driver.Driver, error) {
	m, err := o.loadManifest(nil)
	if err != nil {
		return nil, err
	}
	d, err := driver.FromManifest(m)
	if err != nil {
		return nil, err
	}
	if err := d.Compile(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "soyforge",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Str("version", version.Short()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", MsgFlagConfig)
	rootCmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)

	rootCmd.AddCommand(newBuildCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newRenderCmd(opts))
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	help, err := fs.Sub(topicsFS, "topics")
	if err == nil {
		// Logging is not set up yet, so a failure here only loses topic help
		_ = topics.InitializeWithOptions(rootCmd, help, topics.Options{
			Extensions: []string{".md"},
			Renderer:   topics.NewGlamourRenderer(isTerminal(os.Stdout)),
		})
	}

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}
