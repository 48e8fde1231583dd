package stdin

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/useclassy/pkg/classy"
)

// NewStdinCommand rewrites stdin to stdout, for build pipelines that shell out
// once per template.
func NewStdinCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stdin",
		Short: "rewrite template source read from stdin and print it",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return errors.Errorf("reading stdin: %w", err)
		}

		out, report := classy.TransformWithReport(string(data))

		zerolog.Ctx(cmd.Context()).Debug().
			Int("shorthands", len(report.Shorthands)).
			Int("tags", report.TagsRewritten).
			Int("unattached", report.Unattached).
			Msg("rewrote stdin")

		if _, err := io.WriteString(cmd.OutOrStdout(), out); err != nil {
			return errors.Errorf("writing stdout: %w", err)
		}

		return nil
	}

	return cmd
}
