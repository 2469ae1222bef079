package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/soyforge/pkg/config"
	"github.com/arthur-debert/soyforge/pkg/errors"
)

func newInitCmd() *cobra.Command {
	var commented bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: MsgInitShort,
		Long:  MsgInitLong,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path := filepath.Join(dir, config.ManifestNames[0])

			content := config.StarterContent()
			if commented {
				content = config.CommentedStarterContent()
			}

			f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
			if os.IsExist(err) {
				return errors.Newf(errors.ErrConfigLoad, MsgErrManifestExists, path).
					WithDetail(errors.DetailPath, path)
			}
			if err != nil {
				return errors.Wrapf(err, errors.ErrIO, "cannot create %s", path).
					WithDetail(errors.DetailPath, path)
			}
			err = writeStarter(f, content)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				_ = os.Remove(path)
				return errors.Wrapf(err, errors.ErrIO, "cannot write %s", path).
					WithDetail(errors.DetailPath, path)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgInitWritten, path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&commented, "commented", false, MsgFlagCommented)
	return cmd
}

// writeStarter is swapped in tests to fail after the file exists
var writeStarter = func(f *os.File, content string) error {
	_, err := f.WriteString(content)
	return err
}
