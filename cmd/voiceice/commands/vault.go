package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mohualzy/VoiceIce/internal/studio"
	"github.com/mohualzy/VoiceIce/internal/vault"
)

func newVaultCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Inspect and prune stored uploads and recordings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored files, most recent first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := newApp(cmd, o)
				if err != nil {
					return err
				}
				defer a.Close()

				var blobs []vault.Blob
				for _, name := range a.vault.Names() {
					if b, ok := a.vault.Get(name); ok {
						blobs = append(blobs, b)
					}
				}

				a.printer.Blobs(blobs, a.vault.CurrentName())

				return nil
			},
		},
		&cobra.Command{
			Use:   "rm <name>...",
			Short: "Delete stored files; unknown names are ignored",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(cmd, o)
				if err != nil {
					return err
				}
				defer a.Close()

				if err := a.session.Delete(cmd.Context(), args...); err != nil {
					return a.printer.Error("delete failed", err.Error())
				}

				a.printer.Success("%d file(s) left in the vault", a.vault.Len())

				return nil
			},
		},
		newVaultShowCmd(o),
	)

	return cmd
}

func newVaultShowCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Analyze a stored file at a temperature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, o)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.applyTemperature(cmd); err != nil {
				return err
			}

			if err := a.session.Select(args[0]); err != nil {
				if errors.Is(err, vault.ErrNotFound) {
					return a.printer.Error("no such file", args[0]+" is not in the vault",
						"run voiceice vault list to see stored names")
				}

				return err
			}

			if _, err := a.transformed(cmd.Context()); err != nil {
				return err
			}

			an, err := a.session.Analyze(cmd.Context(), studio.AnalysisOptions{})
			if err != nil {
				return err
			}

			a.printer.Report(an.Report)
			a.printer.Analysis(an)

			return nil
		},
	}

	addTemperatureFlag(cmd)

	return cmd
}
