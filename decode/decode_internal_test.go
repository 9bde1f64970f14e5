package decode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyodai/symread/rs"
)

func TestClassifyQRErrorMapsReedSolomonKinds(t *testing.T) {
	for _, base := range []error{rs.ErrTooManyErrors, rs.ErrRootCountMismatch, rs.ErrBadErrorLocation} {
		wrapped := fmt.Errorf("qrdata: correct: %w", base)
		err := classifyQRError(wrapped)
		assert.Equal(t, KindReedSolomon, err.Kind)
	}
}

func TestClassifyQRErrorDefaultsToDecodeKind(t *testing.T) {
	err := classifyQRError(errors.New("some structural failure"))
	assert.Equal(t, KindDecode, err.Kind)
}

func TestOnedOptionsFiltersBySelectedSymbologies(t *testing.T) {
	cfg := Config{Enabled1DSymbologies: []string{"EAN-13", "Code 39"}, Code39CheckDigit: true}
	opts := cfg.onedOptions()
	assert.True(t, opts.EnableEAN13)
	assert.True(t, opts.EnableCode39)
	assert.True(t, opts.Code39CheckDigit)
	assert.False(t, opts.EnableEAN8)
	assert.False(t, opts.EnableCode128)
}

func TestLoadConfigMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("enable_qr: false\ncode39_check_digit: true\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.EnableQR)
	assert.True(t, cfg.Code39CheckDigit)
	assert.Equal(t, DefaultConfig.Enabled1DSymbologies, cfg.Enabled1DSymbologies)
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAMLErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("enable_qr: [this is not a bool"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
