package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/soyforge/pkg/errors"
	"github.com/arthur-debert/soyforge/pkg/output"
	"github.com/arthur-debert/soyforge/pkg/render"
)

func newRenderCmd(opts *globalOptions) *cobra.Command {
	var (
		sets     []string
		dataFile string
		outPath  string
		encoding string
	)

	cmd := &cobra.Command{
		Use:     "render <template>",
		Short:   MsgRenderShort,
		Example: MsgRenderExample,
		Args:    cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			d, err := opts.compile()
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			return d.Bundle().Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := loadParams(dataFile, sets)
			if err != nil {
				return err
			}

			d, err := opts.compile()
			if err != nil {
				return err
			}
			out, err := render.Render(d.Bundle(), args[0], params)
			if err != nil {
				return err
			}

			if outPath == "" {
				_, err := cmd.OutOrStdout().Write(out.Bytes)
				return err
			}
			if output.IsMarkup(outPath) {
				if err := output.CheckMarkup(out.Bytes); err != nil {
					return err
				}
			}
			w := &output.Writer{DryRun: opts.dryRun}
			res, err := w.Write(out, output.Target{Path: outPath, Encoding: encoding})
			if err != nil {
				return err
			}
			format := MsgArtifactWritten
			if res.DryRun {
				format = MsgArtifactDryRun
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, res.Path, out.Template, res.Bytes, res.Encoding)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, MsgFlagSet)
	cmd.Flags().StringVar(&dataFile, "data", "", MsgFlagData)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", MsgFlagOut)
	cmd.Flags().StringVar(&encoding, "encoding", output.DefaultEncoding, MsgFlagEncoding)
	return cmd
}

// loadParams merges the --data file with --set pairs, the latter winning.
// Values are YAML scalars, so --set size=32 yields an integer.
func loadParams(dataFile string, sets []string) (map[string]interface{}, error) {
	params := map[string]interface{}{}

	if dataFile != "" {
		raw, err := os.ReadFile(dataFile)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "cannot read data file %s", dataFile).
				WithDetail(errors.DetailPath, dataFile)
		}
		if err := yaml.Unmarshal(raw, &params); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "cannot parse data file %s", dataFile).
				WithDetail(errors.DetailPath, dataFile)
		}
		if params == nil {
			params = map[string]interface{}{}
		}
	}

	for _, s := range sets {
		key, raw, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, MsgErrBadSet, s)
		}
		var v interface{}
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
			v = raw
		}
		params[key] = v
	}
	return params, nil
}
