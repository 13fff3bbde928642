package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	got, err := validateName("  John Doe ")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", got)

	_, err = validateName("12345")
	assert.Error(t, err, "all-digit names rejected")

	_, err = validateName("12 34")
	assert.Error(t, err, "digits with spaces rejected")

	_, err = validateName("!!!")
	assert.Error(t, err, "no alphabet character")

	got, err = validateName("4real")
	require.NoError(t, err)
	assert.Equal(t, "4real", got)
}

func TestValidatePhone(t *testing.T) {
	require.NoError(t, validatePhone("+23480123456"))
	require.NoError(t, validatePhone("+2348012345678"))

	assert.Error(t, validatePhone("+1480123456"), "wrong country prefix")
	assert.Error(t, validatePhone("+2341234567"), "too few digits")
	assert.Error(t, validatePhone("+234123456789012"), "too many digits")
	assert.Error(t, validatePhone("+2348012a45678"), "non-digit content")
	assert.Error(t, validatePhone("2348012345678"), "missing plus")
}
