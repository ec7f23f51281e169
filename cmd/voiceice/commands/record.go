package commands

import (
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mohualzy/VoiceIce/internal/vault"
)

func newRecordCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "record <file|->",
		Short: "Store a captured take as a timestamped recording",
		Long: `Store audio as a recording named rec-<timestamp>.wav. Use - to read the
take from standard input. Submitting the same bytes twice in a row is a no-op.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, o)
			if err != nil {
				return err
			}
			defer a.Close()

			var data []byte
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}

			if err != nil {
				return a.printer.Error("cannot read recording", err.Error())
			}

			name, created, err := a.session.Submit(cmd.Context(), vault.Recording(data))
			if err != nil {
				return a.printer.Error("cannot store recording", err.Error())
			}

			if !created {
				if name == "" {
					name = "a deleted recording"
				}

				a.printer.Warning("same take as %s, nothing stored", name)
				return nil
			}

			a.printer.Success("recorded %s (%s)", name, humanize.Bytes(uint64(len(data))))

			return nil
		},
	}
}
