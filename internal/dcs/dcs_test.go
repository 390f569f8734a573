package dcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressMode(t *testing.T) {
	assert.Equal(t, byte(0x00), AddressMode(0, false, false))
	assert.Equal(t, byte(0x60), AddressMode(90, false, false))
	assert.Equal(t, byte(0xC0), AddressMode(180, false, false))
	assert.Equal(t, byte(0xA0), AddressMode(270, false, false))
	assert.Equal(t, byte(0x40), AddressMode(0, true, false))
	assert.Equal(t, byte(0x28), AddressMode(90, true, true))
	assert.True(t, Swapped(AddressMode(90, false, false)))
	assert.False(t, Swapped(AddressMode(180, true, false)))
}
