package amge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/ghodss/yaml"
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
)

// Config holds the restrictor build parameters.
type Config struct {
	// AgglomerateShape is the number of cells per agglomerate along each
	// mesh axis.
	AgglomerateShape []int `json:"agglomerate_shape"`

	// NumEigenvectors is the number of eigenvectors requested
	// per agglomerate.
	NumEigenvectors int `json:"num_eigenvectors"`

	// EigenTolerance bounds the relative residual of accepted eigenpairs.
	EigenTolerance float64 `json:"eigen_tolerance"`
}

// DefaultConfig returns the configuration for a mesh of the given
// dimension: 2 cells per axis, 1 eigenvector, tolerance 1e-12.
func DefaultConfig(dim int) *Config {
	shape := make([]int, dim)
	for d := range shape {
		shape[d] = 2
	}
	return &Config{
		AgglomerateShape: shape,
		NumEigenvectors:  1,
		EigenTolerance:   1e-12,
	}
}

// ParseConfig parses a YAML (or JSON) configuration.
// Unknown fields are rejected; the result is not validated.
func ParseConfig(data []byte) (*Config, error) {
	j, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, &ConfigError{Field: "(document)", Reason: err.Error()}
	}
	c := &Config{}
	dec := json.NewDecoder(bytes.NewReader(j))
	dec.DisallowUnknownFields()
	if err = dec.Decode(c); err != nil {
		return nil, &ConfigError{Field: "(document)", Reason: err.Error()}
	}
	return c, nil
}

// LoadConfig reads and parses a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config")
	}
	return ParseConfig(data)
}

// YAML returns the YAML rendition of the configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	return deepcopy.Copy(c).(*Config)
}

// Validate checks the configuration for a mesh of the given dimension.
// A non-positive dim skips the shape length check.
func (c *Config) Validate(dim int) error {
	switch {
	case c == nil:
		return &ConfigError{Field: "(config)", Reason: "missing"}
	case len(c.AgglomerateShape) == 0:
		return &ConfigError{Field: "agglomerate_shape", Reason: "missing"}
	case dim > 0 && len(c.AgglomerateShape) != dim:
		return &ConfigError{
			Field:  "agglomerate_shape",
			Reason: fmt.Sprintf("%d axes for a %d-D mesh", len(c.AgglomerateShape), dim),
		}
	}
	for d, n := range c.AgglomerateShape {
		if n < 1 {
			return &ConfigError{
				Field:  "agglomerate_shape",
				Reason: fmt.Sprintf("axis %d is %d", d, n),
			}
		}
	}
	if c.NumEigenvectors < 1 {
		return &ConfigError{
			Field:  "num_eigenvectors",
			Reason: fmt.Sprintf("%d is not positive", c.NumEigenvectors),
		}
	}
	if !(c.EigenTolerance > 0) || math.IsInf(c.EigenTolerance, 0) {
		return &ConfigError{
			Field:  "eigen_tolerance",
			Reason: fmt.Sprintf("%g is not a positive number", c.EigenTolerance),
		}
	}
	return nil
}
