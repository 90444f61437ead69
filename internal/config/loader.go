package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "foodlens"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "FOODLENS"
)

// Loader reads configuration from files, environment variables and defaults.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance so cobra flag
// bindings take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load reads the configuration from the search paths, applies environment
// variables and defaults, and validates the result. A missing config file is
// not an error.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return l.unmarshal()
}

// LoadWithFile reads configuration from a specific file path instead of the
// search paths.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// GetViper returns the underlying viper instance for flag binding.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}
	l.v.AddConfigPath("/etc/foodlens")
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "foodlens"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "foodlens"))
	}
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

func (l *Loader) setDefaults() {
	def := Default()

	l.v.SetDefault("log_level", def.LogLevel)
	l.v.SetDefault("verbose", def.Verbose)
	l.v.SetDefault("language", def.Language)
	l.v.SetDefault("keyword_file", def.KeywordFile)
	l.v.SetDefault("debug_dir", def.DebugDir)

	l.v.SetDefault("preprocess.max_edge", def.Preprocess.MaxEdge)
	l.v.SetDefault("preprocess.min_edge", def.Preprocess.MinEdge)
	l.v.SetDefault("preprocess.deskew", def.Preprocess.Deskew)
	l.v.SetDefault("preprocess.deskew_min_angle", def.Preprocess.DeskewMinAngle)
	l.v.SetDefault("preprocess.denoise", def.Preprocess.Denoise)
	l.v.SetDefault("preprocess.denoise_strength", def.Preprocess.DenoiseStrength)
	l.v.SetDefault("preprocess.variants", def.Preprocess.Variants)

	l.v.SetDefault("detect.min_area", def.Detect.MinArea)
	l.v.SetDefault("detect.max_area_fraction", def.Detect.MaxAreaFraction)
	l.v.SetDefault("detect.min_aspect", def.Detect.MinAspect)
	l.v.SetDefault("detect.max_aspect", def.Detect.MaxAspect)
	l.v.SetDefault("detect.accept_score", def.Detect.AcceptScore)
	l.v.SetDefault("detect.padding", def.Detect.Padding)

	l.v.SetDefault("ocr.confidence_floor", def.OCR.ConfidenceFloor)
	l.v.SetDefault("ocr.workers", def.OCR.Workers)
	l.v.SetDefault("ocr.tesseract", def.OCR.Tesseract)
	l.v.SetDefault("ocr.layout_model_path", def.OCR.LayoutModelPath)
	l.v.SetDefault("ocr.onnx_library_path", def.OCR.ONNXLibraryPath)

	l.v.SetDefault("grid.row_tolerance", def.Grid.RowTolerance)
	l.v.SetDefault("grid.col_tolerance", def.Grid.ColTolerance)
}
