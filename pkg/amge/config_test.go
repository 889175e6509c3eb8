package amge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig([]byte(`
agglomerate_shape: [2, 3]
num_eigenvectors: 4
eigen_tolerance: 1e-10
`))
	require.NoError(t, err)
	assert.Equal(t, &Config{
		AgglomerateShape: []int{2, 3},
		NumEigenvectors:  4,
		EigenTolerance:   1e-10,
	}, c)
	assert.NoError(t, c.Validate(2))

	_, err = ParseConfig([]byte("agglomerate_shap: [2, 2]\n"))
	assert.ErrorIs(t, err, ErrConfig)
	_, err = ParseConfig([]byte("num_eigenvectors: [1\n"))
	assert.ErrorIs(t, err, ErrConfig)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amge.yaml")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"agglomerate_shape": [2], "num_eigenvectors": 1, "eigen_tolerance": 0.5}`),
		0o600))
	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, c.AgglomerateShape)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		dim    int
		field  string
	}{
		{"Default", func(c *Config) {}, 3, ""},
		{"AnyDim", func(c *Config) {}, 0, ""},
		{"MissingShape", func(c *Config) { c.AgglomerateShape = nil }, 3, "agglomerate_shape"},
		{"WrongAxes", func(c *Config) {}, 2, "agglomerate_shape"},
		{"ZeroAxis", func(c *Config) { c.AgglomerateShape[1] = 0 }, 3, "agglomerate_shape"},
		{"NoEigenvectors", func(c *Config) { c.NumEigenvectors = 0 }, 3, "num_eigenvectors"},
		{"ZeroTolerance", func(c *Config) { c.EigenTolerance = 0 }, 3, "eigen_tolerance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig(3)
			tt.modify(c)
			err := c.Validate(tt.dim)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var configErr *ConfigError
			require.ErrorAs(t, err, &configErr)
			assert.Equal(t, tt.field, configErr.Field)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	c := DefaultConfig(2)
	c2 := c.Clone()
	c2.AgglomerateShape[0] = 5
	assert.Equal(t, []int{2, 2}, c.AgglomerateShape)

	data, err := c.YAML()
	require.NoError(t, err)
	parsed, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, c, parsed)
}
