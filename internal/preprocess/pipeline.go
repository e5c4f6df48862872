package preprocess

import (
	"fmt"
	"image"
)

// Config selects which stages run and carries their numeric parameters.
// The stage order is fixed; flags only enable or disable members of it.
type Config struct {
	Denoise         bool
	Deskew          bool
	EnhanceContrast bool
	RemoveShadows   bool
	Binarize        bool

	MaxDimension       int
	ClipLimit          float64
	TileGridX          int
	TileGridY          int
	DenoiseStrength    float64
	ThresholdBlockSize int
	ThresholdConstant  int
}

// DefaultConfig returns the general-purpose preprocessing configuration.
func DefaultConfig() Config {
	return Config{
		Denoise:            true,
		Deskew:             true,
		EnhanceContrast:    true,
		RemoveShadows:      false,
		Binarize:           false,
		MaxDimension:       DefaultMaxDimension,
		ClipLimit:          DefaultClipLimit,
		TileGridX:          DefaultTileGridSize,
		TileGridY:          DefaultTileGridSize,
		DenoiseStrength:    DefaultDenoiseStrength,
		ThresholdBlockSize: DefaultThresholdBlockSize,
		ThresholdConstant:  DefaultThresholdConstant,
	}
}

// TicketConfig returns the preprocessing preset for receipt photographs.
// Kept separate from DocumentConfig even though the parameters currently
// coincide: ticket and ID layouts are expected to diverge in tuning.
func TicketConfig() Config {
	cfg := DefaultConfig()
	cfg.RemoveShadows = true
	return cfg
}

// DocumentConfig returns the preprocessing preset for identity documents.
func DocumentConfig() Config {
	cfg := DefaultConfig()
	cfg.RemoveShadows = true
	return cfg
}

// Validate checks the numeric stage parameters.
func (c Config) Validate() error {
	if c.MaxDimension <= 0 {
		return fmt.Errorf("max dimension must be positive, got %d", c.MaxDimension)
	}
	if c.EnhanceContrast {
		if c.ClipLimit <= 0 {
			return fmt.Errorf("clip limit must be positive, got %g", c.ClipLimit)
		}
		if c.TileGridX <= 0 || c.TileGridY <= 0 {
			return fmt.Errorf("tile grid must be positive, got %dx%d", c.TileGridX, c.TileGridY)
		}
	}
	if c.Denoise && c.DenoiseStrength <= 0 {
		return fmt.Errorf("denoise strength must be positive, got %g", c.DenoiseStrength)
	}
	if c.Binarize {
		if c.ThresholdBlockSize < 3 || c.ThresholdBlockSize%2 == 0 {
			return fmt.Errorf("threshold block size must be odd and at least 3, got %d", c.ThresholdBlockSize)
		}
	}
	return nil
}

// Run applies the enabled stages in the canonical order: resize, shadow
// removal, contrast enhancement, denoise, deskew, then grayscale conversion
// and optional binarization. It returns the single-channel result ready for
// recognition and the resize scale factor (1.0 when no resize occurred).
// Every stage allocates its output; the input image is never modified.
func Run(img image.Image, cfg Config) (*image.Gray, float64) {
	processed, scale := Resize(img, cfg.MaxDimension)

	if cfg.RemoveShadows {
		processed = RemoveShadows(processed)
	}
	if cfg.EnhanceContrast {
		processed = EnhanceContrast(processed, cfg.ClipLimit, cfg.TileGridX, cfg.TileGridY)
	}
	if cfg.Denoise {
		processed = Denoise(processed, cfg.DenoiseStrength)
	}
	if cfg.Deskew {
		processed = Deskew(processed)
	}

	gray := Grayscale(processed)
	if cfg.Binarize {
		gray = AdaptiveThreshold(gray, cfg.ThresholdBlockSize, cfg.ThresholdConstant)
	}
	return gray, scale
}
