package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWelcome(t *testing.T) {
	body, err := RenderWelcome("Jan", "123456")
	require.NoError(t, err)
	assert.Contains(t, body, "Welcome, Jan!")
	assert.Contains(t, body, "<strong>123456</strong>")
}

func TestRenderWelcomeEscapesName(t *testing.T) {
	body, err := RenderWelcome("<script>x</script>", "123456")
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}
