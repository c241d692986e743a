package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionToken(t *testing.T) {
	tok, err := NewSessionToken(30)
	require.NoError(t, err)
	assert.Len(t, tok.Raw, 64)
	assert.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), tok.Exp, 2*time.Second)

	other, err := NewSessionToken(30)
	require.NoError(t, err)
	assert.NotEqual(t, tok.Raw, other.Raw)
}

func TestHashTokenIsDeterministic(t *testing.T) {
	h := HashToken("abc")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("abc"))
	assert.NotEqual(t, h, HashToken("abd"))
}

func TestNewOTP(t *testing.T) {
	for range 20 {
		otp, err := NewOTP()
		require.NoError(t, err)
		require.Len(t, otp, 6)
		for _, r := range otp {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}
