package commands

import (
	"math"

	"github.com/spf13/cobra"

	"github.com/mohualzy/VoiceIce/dsp/temperature"
)

func newReportCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Describe the mood and effect of a temperature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := cmd.Flags().GetFloat64("temperature")
			if err != nil {
				return err
			}

			t := temperature.Temperature(v)
			if math.IsNaN(v) || !t.Valid() {
				return o.printer.Error("invalid temperature", "temperature must be in [0.5, 2]",
					"pick a value between 0.5 (coolest) and 2 (hottest)")
			}

			o.printer.Report(temperature.Describe(t))
			o.printer.Info("effect: %s, duration x%.3f, pitch %+.2f semitones",
				temperature.Plan(t), temperature.StretchRate(t), temperature.Semitones(t))

			return nil
		},
	}

	addTemperatureFlag(cmd)

	return cmd
}
