package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/MeKo-Tech/foodlens/internal/pipeline"
	"github.com/spf13/cobra"
)

// debugCmd dumps the raw extraction state without scoring, for tuning the
// keyword tables and preprocessing.
var debugCmd = &cobra.Command{
	Use:   "debug <image>",
	Short: "Show raw OCR extraction state without scoring",
	Long: `Run extraction only and print the combined OCR text, the raw
per-nutrient values and diagnostics as JSON. No validation or scoring is
applied, so the output reflects exactly what the keyword tables matched.

Example:
  foodlens debug label.jpg --debug-dir /tmp/foodlens`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		p, err := pipeline.New(cfg.ToPipelineConfig(), nil)
		if err != nil {
			return err
		}
		defer func() { _ = p.Close() }()

		data, err := os.ReadFile(args[0]) //nolint:gosec // G304: user-provided path
		if err != nil {
			return fmt.Errorf("%w: %w", pipeline.ErrImageRead, err)
		}

		ext, err := p.Debug(cmd.Context(), data, cfg.Language)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(ext, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding extraction: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
}
