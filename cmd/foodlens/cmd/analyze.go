package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/MeKo-Tech/foodlens/internal/pipeline"
	"github.com/spf13/cobra"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// analyzeCmd grades a label photo.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Analyze a label photo and compute its Nutri-Score",
	Long: `Analyze a packaged-food label photograph: locate the nutrition table,
extract per-100g values via OCR and grade the product A-E.

Supported formats: JPEG, PNG, BMP

Examples:
  foodlens analyze label.jpg
  foodlens analyze label.jpg --format json --output result.json
  foodlens analyze etiket.jpg --lang tr`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		format, _ := cmd.Flags().GetString("format")
		outputFile, _ := cmd.Flags().GetString("output")
		if format != outputFormatJSON && format != outputFormatText {
			return fmt.Errorf("unsupported output format %q (json, text)", format)
		}

		p, err := pipeline.New(cfg.ToPipelineConfig(), nil)
		if err != nil {
			return err
		}
		defer func() { _ = p.Close() }()

		result, err := p.AnalyzeFile(cmd.Context(), args[0], cfg.Language)
		if err != nil {
			if errors.Is(err, pipeline.ErrNoTextDetected) {
				return fmt.Errorf("no readable text found in %s", args[0])
			}
			return err
		}

		var rendered string
		if format == outputFormatJSON {
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			rendered = string(data)
		} else {
			rendered = formatResultText(result)
		}

		if outputFile != "" {
			return os.WriteFile(outputFile, []byte(rendered+"\n"), 0o600)
		}
		fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func formatResultText(r pipeline.Result) string {
	var b strings.Builder
	if r.NutriScore != nil {
		fmt.Fprintf(&b, "Nutri-Score: %s (%d points, %s)\n",
			r.NutriScore.Grade, r.NutriScore.Score, r.NutriScore.FoodType)
	} else {
		fmt.Fprintf(&b, "Nutri-Score: unavailable (%s)\n", r.Error)
	}
	n := r.Nutrition
	fmt.Fprintf(&b, "Per 100g: %.0f kJ / %.0f kcal, fat %.1fg (sat %.1fg), carbs %.1fg (sugars %.1fg), fiber %.1fg, protein %.1fg, salt %.2fg\n",
		n.EnergyKJ, n.EnergyKcal, n.Fat, n.SaturatedFat, n.Carbohydrates, n.Sugars, n.Fiber, n.Proteins, n.Salt)
	if len(r.Ingredients) > 0 {
		fmt.Fprintf(&b, "Ingredients: %s\n", strings.Join(r.Ingredients, ", "))
	}
	fmt.Fprintf(&b, "Data quality: %.0f%% complete, %.0f%% confidence", r.DataQuality.Completeness, r.DataQuality.Confidence)
	if r.DataQuality.ManualReviewNeeded {
		b.WriteString(" (manual review recommended)")
	}
	if len(r.DataQuality.MissingNutrients) > 0 {
		fmt.Fprintf(&b, "\nMissing: %s", strings.Join(r.DataQuality.MissingNutrients, ", "))
	}
	return b.String()
}

func init() {
	analyzeCmd.Flags().String("format", outputFormatText, "output format (json, text)")
	analyzeCmd.Flags().StringP("output", "o", "", "write the result to a file instead of stdout")
	rootCmd.AddCommand(analyzeCmd)
}
