package commands

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mohualzy/VoiceIce/internal/player"
	"github.com/mohualzy/VoiceIce/internal/vault"
)

func newPlayCmd(o *rootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "play [file]",
		Short: "Play a file, or a stored one, through the transform",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (name != "") {
				return o.printer.Error("nothing to play", "give either a file or --name")
			}

			a, err := newApp(cmd, o)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.applyTemperature(cmd); err != nil {
				return err
			}

			if name != "" {
				if err := a.session.Select(name); err != nil {
					return a.printer.Error("no such file", err.Error(),
						"run voiceice vault list to see stored names")
				}
			} else {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return a.printer.Error("cannot read input", err.Error())
				}

				if _, _, err := a.session.Submit(cmd.Context(), vault.Upload(filepath.Base(args[0]), data)); err != nil {
					return a.printer.Error("cannot store "+filepath.Base(args[0]), err.Error())
				}
			}

			res, err := a.transformed(cmd.Context())
			if err != nil {
				return err
			}

			a.printer.Info("playing %s (%s, %.2fs)", res.Name, res.Effect, res.Transformed.Duration())

			err = player.Play(cmd.Context(), res.Transformed)
			if errors.Is(err, player.ErrUnavailable) {
				return a.printer.Error("no audio output", err.Error(), "use voiceice render to write a WAV instead")
			}

			if cmd.Context().Err() != nil {
				return nil
			}

			return err
		},
	}

	addTemperatureFlag(cmd)
	cmd.Flags().StringVarP(&name, "name", "n", "", "play a stored file by name")

	return cmd
}
