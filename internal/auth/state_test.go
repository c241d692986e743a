package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	state, err := NewState("secret")
	require.NoError(t, err)
	assert.NoError(t, VerifyState("secret", state))
}

func TestStateRejectsWrongSecret(t *testing.T) {
	state, err := NewState("secret")
	require.NoError(t, err)
	assert.Error(t, VerifyState("other", state))
}

func TestStateRejectsGarbage(t *testing.T) {
	assert.Error(t, VerifyState("secret", ""))
	assert.Error(t, VerifyState("secret", "not-a-token"))
}
