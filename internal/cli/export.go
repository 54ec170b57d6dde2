package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sadopc/mirror/internal/export"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format     string
		out        string
		recipients []string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the journal and voice notes",
		Long: `Export writes journal entries and voice notes as CSV, JSON or an HTML
page. With one or more --recipient age public keys the output is
encrypted and ASCII armored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			return opts.withUnlockedSession(cmd, func(s *session) error {
				snap := s.mgr.Snapshot()
				write := func(w io.Writer) error { return export.Write(w, f, snap) }

				if out != "" {
					if err := export.ToFile(out, recipients, write); err != nil {
						return err
					}
					s.log.Info("exported", "format", f, "path", out, "sealed", len(recipients) > 0)
					fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", out)
					return nil
				}

				if len(recipients) == 0 {
					return write(cmd.OutOrStdout())
				}
				sealed, err := export.Seal(cmd.OutOrStdout(), recipients)
				if err != nil {
					return err
				}
				if err := write(sealed); err != nil {
					sealed.Close()
					return err
				}
				return sealed.Close()
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatJSON), "csv, json or html")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringArrayVarP(&recipients, "recipient", "r", nil, "age public key to encrypt to (repeatable)")
	return cmd
}
