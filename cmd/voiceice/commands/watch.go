package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mohualzy/VoiceIce/internal/inbox"
	"github.com/mohualzy/VoiceIce/internal/vault"
)

func newWatchCmd(o *rootOptions) *cobra.Command {
	var (
		outDir   string
		existing bool
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Render every audio file dropped into a directory",
		Long: `Watch a directory and render each .wav or .mp3 file that appears in it,
once it stops changing, into the output directory.

Examples:
  voiceice watch ~/takes -o ~/takes/cold -t 0.6`,
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

			if same, _ := sameDir(args[0], outDir); same {
				return a.printer.Error("output inside the watched directory",
					"rendered files would be picked up and rendered again", "choose another --output directory")
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return a.printer.Error("cannot create output directory", err.Error())
			}

			handle := func(ctx context.Context, path string, data []byte) error {
				name, _, err := a.session.Submit(ctx, vault.Upload(filepath.Base(path), data))
				if err != nil {
					return err
				}

				if name == "" {
					a.printer.Warning("skipped %s: same upload as a deleted entry", filepath.Base(path))
					return nil
				}

				res, err := a.session.Transformed(ctx)
				if err != nil {
					a.printer.Warning("skipped %s: %v", name, err)
					return err
				}

				wav, err := res.WAV()
				if err != nil {
					return fmt.Errorf("encode %s: %w", name, err)
				}

				out := outputName(outDir, name, res.Temperature)
				if err := os.WriteFile(out, wav, 0o644); err != nil {
					return err
				}

				a.printer.Success("%s → %s (%s)", name, out, res.Effect)

				return nil
			}

			opts := []inbox.Option{inbox.WithLogger(a.logger)}
			if existing {
				opts = append(opts, inbox.WithExisting())
			}

			w, err := inbox.New(args[0], handle, opts...)
			if err != nil {
				return a.printer.Error("cannot watch "+args[0], err.Error())
			}

			a.printer.Info("watching %s at temperature %s, Ctrl-C to stop", args[0], a.session.Temperature())

			return w.Run(cmd.Context())
		},
	}

	addTemperatureFlag(cmd)
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "directory for rendered files")
	cmd.Flags().BoolVar(&existing, "existing", false, "also render files already in the directory")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func sameDir(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}

	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}

	return absA == absB, nil
}
