package traffic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderCaseInsensitive(t *testing.T) {
	h := make(Header)
	h.Set("Content-Type", "application/json")

	assert.Equal(t, "application/json", h.Get("content-type"))
	assert.Equal(t, "application/json", h.Get("CONTENT-TYPE"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))

	h.Set("CONTENT-TYPE", "text/plain")
	assert.Equal(t, "text/plain", h.Get("content-type"))
	assert.Len(t, h, 1, "case variants must share one entry")

	h.Del("Content-type")
	assert.Empty(t, h.Get("content-type"))

	var nilHeader Header
	assert.Empty(t, nilHeader.Get("anything"))
}

func TestHeaderClone(t *testing.T) {
	h := make(Header)
	h.Set("A", "1")
	c := h.Clone()
	c.Set("A", "2")

	assert.Equal(t, "1", h.Get("a"))
	assert.Equal(t, "2", c.Get("a"))
}

func TestNewResponseDefaults(t *testing.T) {
	res := NewResponse()
	assert.Equal(t, 200, res.StatusCode)
	assert.NotNil(t, res.Headers)
	assert.Nil(t, res.Body)
}

func TestOutcomeVariants(t *testing.T) {
	t.Run("respond", func(t *testing.T) {
		out := Respond(0, map[string]string{"X-Test": "1"}, []byte("hello"))
		require.NotNil(t, out.Response)
		require.NoError(t, out.Err)
		assert.False(t, out.Failed())
		assert.Equal(t, 200, out.Response.StatusCode, "zero status defaults to 200")
		assert.Equal(t, "1", out.Response.Headers.Get("x-test"))
		assert.Equal(t, []byte("hello"), out.Response.Body)
	})

	t.Run("respond with status", func(t *testing.T) {
		out := Respond(404, nil, nil)
		assert.Equal(t, 404, out.Response.StatusCode)
	})

	t.Run("fail", func(t *testing.T) {
		cause := errors.New("connection reset")
		out := Fail(cause)
		assert.Nil(t, out.Response)
		assert.True(t, out.Failed())
		assert.Equal(t, cause, out.Err)
	})
}

func TestRequestKey(t *testing.T) {
	a := NewRequest("GET", "https://example.com/a?x=1")
	b := NewRequest("POST", "https://example.com/a?x=1")

	assert.Equal(t, a.Key(), b.Key(), "method must not influence the key")
	assert.NotEqual(t, a.Key(), NewRequest("GET", "https://example.com/b").Key())
}
