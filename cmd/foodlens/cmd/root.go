package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/foodlens/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	globalConfig *config.Config
	cfgFile      string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "foodlens",
	Short: "Nutrition label analysis and Nutri-Score grading",
	Long: `foodlens reads a photo of a packaged-food label, locates the nutrition
facts table, extracts the per-100g values with OCR and grades the product
on the European Nutri-Score scale (A-E).

Examples:
  foodlens analyze label.jpg
  foodlens analyze label.jpg --lang tr --format json
  foodlens debug label.jpg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
func GetRootCommand() *cobra.Command {
	return rootCmd
}

// GetConfig returns the loaded configuration, loading it on first use.
func GetConfig() *config.Config {
	if globalConfig == nil {
		initConfig()
	}
	return globalConfig
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/foodlens, /etc/foodlens)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("lang", "", "label language as a BCP-47 code (default tr)")
	rootCmd.PersistentFlags().String("keywords", "", "YAML file overriding the built-in keyword tables")
	rootCmd.PersistentFlags().String("layout-model", "", "ONNX text-detection model enabling the layout engine")
	rootCmd.PersistentFlags().Int("workers", 0, "OCR worker pool size (0 = number of CPUs)")
	rootCmd.PersistentFlags().String("debug-dir", "", "directory receiving preprocessing candidate dumps")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("language", rootCmd.PersistentFlags().Lookup("lang"))
	_ = viper.BindPFlag("keyword_file", rootCmd.PersistentFlags().Lookup("keywords"))
	_ = viper.BindPFlag("ocr.layout_model_path", rootCmd.PersistentFlags().Lookup("layout-model"))
	_ = viper.BindPFlag("ocr.workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("debug_dir", rootCmd.PersistentFlags().Lookup("debug-dir"))

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if globalConfig == nil {
			initConfig()
		}
		configureLogging(globalConfig)
	}
}

func initConfig() {
	loader := config.NewLoader()
	cfg, err := loader.LoadWithFile(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	globalConfig = cfg
}

func configureLogging(cfg *config.Config) {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
