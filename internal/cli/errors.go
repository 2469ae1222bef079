package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/arthur-debert/soyforge/pkg/errors"
)

// FormatError renders err as "<stage> failed: <error>", adding the template
// and path it concerns when the message does not already name them
func FormatError(err error) string {
	msg := err.Error()

	var extra []string
	details := errors.GetErrorDetails(err)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == errors.DetailStage {
			continue
		}
		v := fmt.Sprint(details[k])
		if v == "" || strings.Contains(msg, v) {
			continue
		}
		extra = append(extra, k+"="+v)
	}
	if len(extra) > 0 {
		msg += " (" + strings.Join(extra, ", ") + ")"
	}
	return fmt.Sprintf(MsgErrStageFailed, errors.Stage(err), msg)
}

// PrintError writes err to w in the process exit format
func PrintError(w io.Writer, err error) {
	_, _ = fmt.Fprintln(w, styleError(w, FormatError(err)))
}
