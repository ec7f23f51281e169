package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mohualzy/VoiceIce/internal/studio"
	"github.com/mohualzy/VoiceIce/internal/vault"
)

func newRenderCmd(o *rootOptions) *cobra.Command {
	var (
		output  string
		analyze bool
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Store an audio file and write its transformed WAV",
		Long: `Store a WAV or MP3 file in the vault as an upload, transform it at the
given temperature and write the result as a 16-bit mono WAV.

Examples:
  # Cool a recording down
  voiceice render take.wav -t 0.6

  # Heat it up and compare levels
  voiceice render take.mp3 -t 1.8 -o hot.wav --analyze`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, o)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.applyTemperature(cmd); err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return a.printer.Error("cannot read input", err.Error())
			}

			name, _, err := a.session.Submit(cmd.Context(), vault.Upload(filepath.Base(args[0]), data))
			if err != nil {
				return a.printer.Error("cannot store "+filepath.Base(args[0]), err.Error())
			}

			res, err := a.transformed(cmd.Context())
			if err != nil {
				return err
			}

			wav, err := res.WAV()
			if err != nil {
				return fmt.Errorf("encode %s: %w", name, err)
			}

			if output == "" {
				output = outputName(filepath.Dir(args[0]), name, res.Temperature)
			}

			if err := os.WriteFile(output, wav, 0o644); err != nil {
				return a.printer.Error("cannot write output", err.Error())
			}

			a.printer.Success("%s → %s (%s, %s)", name, output, res.Effect, humanize.Bytes(uint64(len(wav))))

			if analyze {
				an, err := a.session.Analyze(cmd.Context(), studio.AnalysisOptions{})
				if err != nil {
					return err
				}

				a.printer.Analysis(an)
			}

			return nil
		},
	}

	addTemperatureFlag(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output WAV (default: <name>-t<temperature>.wav beside the input)")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "print a before/after level summary")

	return cmd
}
