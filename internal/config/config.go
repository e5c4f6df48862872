// Package config defines the slipscan application configuration and its
// loading from files, environment variables, and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/slipscan/internal/pipeline"
	"github.com/MeKo-Tech/slipscan/internal/preprocess"
	"github.com/MeKo-Tech/slipscan/internal/recognize"
)

// Config represents the complete configuration for the slipscan
// application. It covers all commands (ticket, document, text, serve) and
// supports loading from configuration files, environment variables, and
// command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Recognition RecognitionConfig `mapstructure:"recognition" yaml:"recognition" json:"recognition"`
	Preprocess  PreprocessConfig  `mapstructure:"preprocess" yaml:"preprocess" json:"preprocess"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output" json:"output"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server" json:"server"`
}

// RecognitionConfig contains text recognition settings.
type RecognitionConfig struct {
	Language string `mapstructure:"language" yaml:"language" json:"language"`
	DataPath string `mapstructure:"data_path" yaml:"data_path" json:"data_path"`
}

// PreprocessConfig contains image preprocessing settings shared by the
// ticket and document profiles.
type PreprocessConfig struct {
	MaxDimension       int     `mapstructure:"max_dimension" yaml:"max_dimension" json:"max_dimension"`
	RemoveShadows      bool    `mapstructure:"remove_shadows" yaml:"remove_shadows" json:"remove_shadows"`
	EnhanceContrast    bool    `mapstructure:"enhance_contrast" yaml:"enhance_contrast" json:"enhance_contrast"`
	Denoise            bool    `mapstructure:"denoise" yaml:"denoise" json:"denoise"`
	DenoiseStrength    float64 `mapstructure:"denoise_strength" yaml:"denoise_strength" json:"denoise_strength"`
	Deskew             bool    `mapstructure:"deskew" yaml:"deskew" json:"deskew"`
	ClipLimit          float64 `mapstructure:"clip_limit" yaml:"clip_limit" json:"clip_limit"`
	TileGridSize       int     `mapstructure:"tile_grid_size" yaml:"tile_grid_size" json:"tile_grid_size"`
	Binarize           bool    `mapstructure:"binarize" yaml:"binarize" json:"binarize"`
	ThresholdBlockSize int     `mapstructure:"threshold_block_size" yaml:"threshold_block_size" json:"threshold_block_size"`
	ThresholdConstant  int     `mapstructure:"threshold_constant" yaml:"threshold_constant" json:"threshold_constant"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// DefaultConfig returns a configuration with sensible defaults. Preprocess
// defaults are seeded from the ticket profile preset because the configured
// values overlay both profile presets.
func DefaultConfig() Config {
	prep := preprocess.TicketConfig()
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Recognition: RecognitionConfig{
			Language: recognize.DefaultLanguage,
		},
		Preprocess: PreprocessConfig{
			MaxDimension:       prep.MaxDimension,
			RemoveShadows:      prep.RemoveShadows,
			EnhanceContrast:    prep.EnhanceContrast,
			Denoise:            prep.Denoise,
			DenoiseStrength:    prep.DenoiseStrength,
			Deskew:             prep.Deskew,
			ClipLimit:          prep.ClipLimit,
			TileGridSize:       prep.TileGridX,
			Binarize:           prep.Binarize,
			ThresholdBlockSize: prep.ThresholdBlockSize,
			ThresholdConstant:  prep.ThresholdConstant,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)",
			c.Output.Format, strings.Join(validFormats, ", "))
	}

	if c.Recognition.Language == "" {
		return fmt.Errorf("recognition language must not be empty")
	}

	if c.Preprocess.MaxDimension <= 0 {
		return fmt.Errorf("invalid max dimension: %d (must be positive)", c.Preprocess.MaxDimension)
	}
	if c.Preprocess.Denoise && c.Preprocess.DenoiseStrength <= 0 {
		return fmt.Errorf("invalid denoise strength: %g (must be positive)", c.Preprocess.DenoiseStrength)
	}
	if c.Preprocess.TileGridSize <= 0 {
		return fmt.Errorf("invalid tile grid size: %d (must be positive)", c.Preprocess.TileGridSize)
	}
	if c.Preprocess.Binarize {
		if c.Preprocess.ThresholdBlockSize < 3 || c.Preprocess.ThresholdBlockSize%2 == 0 {
			return fmt.Errorf("invalid threshold block size: %d (must be odd and at least 3)",
				c.Preprocess.ThresholdBlockSize)
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}

	return nil
}

// ToPipelineBuilder converts the config into a pipeline builder with all
// settings applied.
func (c *Config) ToPipelineBuilder() *pipeline.Builder {
	return pipeline.NewBuilder().
		WithLanguage(c.Recognition.Language).
		WithDataPath(c.Recognition.DataPath).
		WithTicketPreprocess(c.toPreprocessConfig(preprocess.TicketConfig())).
		WithDocumentPreprocess(c.toPreprocessConfig(preprocess.DocumentConfig()))
}

// toPreprocessConfig overlays the configured preprocessing settings onto a
// profile preset.
func (c *Config) toPreprocessConfig(base preprocess.Config) preprocess.Config {
	base.MaxDimension = c.Preprocess.MaxDimension
	base.RemoveShadows = c.Preprocess.RemoveShadows
	base.EnhanceContrast = c.Preprocess.EnhanceContrast
	base.Denoise = c.Preprocess.Denoise
	base.DenoiseStrength = c.Preprocess.DenoiseStrength
	base.Deskew = c.Preprocess.Deskew
	base.ClipLimit = c.Preprocess.ClipLimit
	base.TileGridX = c.Preprocess.TileGridSize
	base.TileGridY = c.Preprocess.TileGridSize
	base.Binarize = c.Preprocess.Binarize
	base.ThresholdBlockSize = c.Preprocess.ThresholdBlockSize
	base.ThresholdConstant = c.Preprocess.ThresholdConstant
	return base
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
