// Package loudnorm builds the ffmpeg invocation that normalizes the loudness
// of a single audio file with the EBU R128 loudnorm filter.
package loudnorm

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Default parameter values offered to the user.
const (
	DefaultIntegrated = "-14"
	DefaultTruePeak   = "-1.5"
	DefaultRange      = "11"
	DefaultQuality    = "0"
)

// ErrInvalidParams is returned by Params.Validate when a value is not numeric.
var ErrInvalidParams = errors.New("invalid loudnorm parameters")

// Params are the loudness normalization settings exactly as the user typed
// them. Values are passed to ffmpeg uninterpreted unless Validate is called.
type Params struct {
	// Integrated is the integrated loudness target (I), in LUFS.
	Integrated string `validate:"required,numeric"`
	// TruePeak is the maximum true peak (TP), in dBTP.
	TruePeak string `validate:"required,numeric"`
	// Range is the loudness range target (LRA), in LU.
	Range string `validate:"required,numeric"`
	// Quality is the encoder quality option passed as -q:a.
	Quality string `validate:"required,numeric"`
}

// DefaultParams returns the parameters used when every prompt is left empty.
func DefaultParams() Params {
	return Params{
		Integrated: DefaultIntegrated,
		TruePeak:   DefaultTruePeak,
		Range:      DefaultRange,
		Quality:    DefaultQuality,
	}
}

// Filter returns the -af argument, e.g. "loudnorm=I=-14:TP=-1.5:LRA=11".
// Quality is not part of the filter.
func (p Params) Filter() string {
	return fmt.Sprintf("loudnorm=I=%s:TP=%s:LRA=%s", p.Integrated, p.TruePeak, p.Range)
}

// Args returns the ffmpeg arguments that normalize input into output,
// overwriting output if it exists.
func (p Params) Args(input, output string) []string {
	return []string{
		"-i", input, // Input file
		"-af", p.Filter(), // Audio filter
		"-q:a", p.Quality, // Encoder quality
		"-y",   // Overwrite output file without asking
		output, // Output file
	}
}

var validate = validator.New()

// Validate reports an error wrapping ErrInvalidParams when any value is empty
// or not numeric.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}

// ValidateValue checks a single value with the same rule Validate applies.
func ValidateValue(v string) error {
	if err := validate.Var(v, "required,numeric"); err != nil {
		return fmt.Errorf("%w: %q is not a number", ErrInvalidParams, v)
	}
	return nil
}

// OutputPath returns where the normalized copy of input is written:
// <dir of input>/<resultDir>/<stem of input>.<ext>.
func OutputPath(input, resultDir, ext string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(input), resultDir, stem+"."+strings.TrimPrefix(ext, "."))
}
