package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChartinkResolveCSRFToken(t *testing.T) {
	t.Run("explicit token wins", func(t *testing.T) {
		client := NewChartinkClient("XSRF-TOKEN=from-cookie", "explicit")

		assert.Equal(t, "explicit", client.resolveCSRFToken())
	})

	t.Run("falls back to the XSRF-TOKEN cookie", func(t *testing.T) {
		client := NewChartinkClient("ci_session=abc; XSRF-TOKEN=from-cookie; other=1", "")

		assert.Equal(t, "from-cookie", client.resolveCSRFToken())
	})

	t.Run("unescapes url-encoded cookie values", func(t *testing.T) {
		client := NewChartinkClient("XSRF-TOKEN=abc%3D%3D", "")

		assert.Equal(t, "abc==", client.resolveCSRFToken())
	})

	t.Run("no cookie yields an empty token", func(t *testing.T) {
		client := NewChartinkClient("", "")

		assert.Equal(t, "", client.resolveCSRFToken())
	})
}
