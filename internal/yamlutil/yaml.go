// Package yamlutil wraps YAML decoding so front matter and the site config
// share one parser and one set of errors.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to 1MB.
var MaxInputSize = 1 << 20

var (
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// Unmarshal decodes data into v. Empty input leaves v untouched, which is
// what an empty front matter block or config file should mean.
func Unmarshal(data []byte, v any) error {
	if v == nil {
		return ErrNilDestination
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if len(data) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}
