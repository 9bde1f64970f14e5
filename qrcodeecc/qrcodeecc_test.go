package qrcodeecc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBitsRoundTripsThroughFromFormatBits(t *testing.T) {
	for _, level := range []QrCodeEcc{Low, Medium, Quartile, High} {
		assert.Equal(t, level, FromFormatBits(level.FormatBits()))
	}
}

func TestFormatBitsNonMonotonic(t *testing.T) {
	// The published mapping is intentionally not in Low<Medium<Quartile<High
	// order: M=00, L=01, H=10, Q=11.
	assert.Equal(t, uint8(1), Low.FormatBits())
	assert.Equal(t, uint8(0), Medium.FormatBits())
	assert.Equal(t, uint8(3), Quartile.FormatBits())
	assert.Equal(t, uint8(2), High.FormatBits())
}

func TestOrdinal(t *testing.T) {
	assert.Equal(t, uint(0), Low.Ordinal())
	assert.Equal(t, uint(1), Medium.Ordinal())
	assert.Equal(t, uint(2), Quartile.Ordinal())
	assert.Equal(t, uint(3), High.Ordinal())
}

func TestString(t *testing.T) {
	assert.Equal(t, "L", Low.String())
	assert.Equal(t, "M", Medium.String())
	assert.Equal(t, "Q", Quartile.String())
	assert.Equal(t, "H", High.String())
}
