package rules

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netmock/pkg/traffic"
)

func respond(body string) traffic.Outcome {
	return traffic.Respond(200, nil, []byte(body))
}

func get(url string) *traffic.Request {
	return traffic.NewRequest("GET", url)
}

func TestSingleUseExhaustion(t *testing.T) {
	g := NewRegistry()
	req := get("https://example.com/login")
	g.Add(Once(req, respond("first"), 0))
	g.Add(Once(req, respond("second"), 0))

	r1 := g.Resolve(req)
	require.NotNil(t, r1)
	assert.Equal(t, "first", string(r1.Outcome.Response.Body))

	r2 := g.Resolve(req)
	require.NotNil(t, r2)
	assert.Equal(t, "second", string(r2.Outcome.Response.Body))

	assert.Nil(t, g.Resolve(req), "both single-use rules consumed")
	assert.Zero(t, g.Len())
}

func TestOnceFallsThroughToRepeatable(t *testing.T) {
	g := NewRegistry()
	req := get("https://example.com/data")
	g.Add(Once(req, respond("once"), 0))
	g.Add(Always(req, respond("always"), 0))

	assert.Equal(t, "once", string(g.Resolve(req).Outcome.Response.Body))
	for i := 0; i < 5; i++ {
		res := g.Resolve(req)
		require.NotNil(t, res)
		assert.Equal(t, "always", string(res.Outcome.Response.Body))
	}
	assert.Equal(t, 1, g.Len())
}

func TestFirstRegisteredWins(t *testing.T) {
	g := NewRegistry()
	req := get("https://example.com/dup")
	g.Add(Always(req, respond("a"), 0))
	g.Add(Always(req, respond("b"), 0))

	for i := 0; i < 3; i++ {
		assert.Equal(t, "a", string(g.Resolve(req).Outcome.Response.Body))
	}
}

func TestPatternCapture(t *testing.T) {
	g := NewRegistry()
	gen := func(url string, groups []string) traffic.Outcome {
		return respond("id=" + groups[1])
	}
	r, err := Pattern(`https://shop\.example\.com/product/([0-9]{6})`, gen, 0)
	require.NoError(t, err)
	g.Add(r)

	a := g.Resolve(get("https://shop.example.com/product/111111"))
	b := g.Resolve(get("https://shop.example.com/product/222222"))
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, "id=111111", string(a.Outcome.Response.Body))
	assert.Equal(t, "id=222222", string(b.Outcome.Response.Body))

	assert.Nil(t, g.Resolve(get("https://shop.example.com/product/12")), "pattern must not match short ids")
}

func TestPatternInvalid(t *testing.T) {
	_, err := Pattern("([", nil, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPattern))
}

func TestGeneratorFailureBecomesOutcome(t *testing.T) {
	g := NewRegistry()
	boom := errors.New("generator exploded")
	r, err := Pattern(`.*`, func(string, []string) traffic.Outcome {
		return traffic.Fail(boom)
	}, 0)
	require.NoError(t, err)
	g.Add(r)

	res := g.Resolve(get("https://example.com/whatever"))
	require.NotNil(t, res, "generator failure is not a resolution failure")
	assert.Equal(t, boom, res.Outcome.Err)
}

func TestClear(t *testing.T) {
	g := NewRegistry()
	req := get("https://example.com/x")
	g.Add(Always(req, respond("x"), 0))
	require.NotNil(t, g.Resolve(req))

	g.Clear()
	assert.Nil(t, g.Resolve(req))
	assert.Zero(t, g.Len())

	g.Add(Always(req, respond("y"), 0))
	assert.Equal(t, "y", string(g.Resolve(req).Outcome.Response.Body))
}

func TestDefaultDelayIsPositive(t *testing.T) {
	r := Once(get("https://example.com"), respond(""), 0)
	assert.Equal(t, DefaultDelay, r.Delay)

	r = Always(get("https://example.com"), respond(""), 25*time.Millisecond)
	assert.Equal(t, 25*time.Millisecond, r.Delay)
}

func TestStats(t *testing.T) {
	g := NewRegistry()
	req := get("https://example.com/s")
	id := g.Add(Always(req, respond("s"), 0))

	g.Resolve(req)
	g.Resolve(req)
	g.Resolve(get("https://example.com/miss"))

	st := g.Stats()
	assert.Equal(t, int64(3), st.Total)
	assert.Equal(t, int64(2), st.Matched)
	assert.Equal(t, int64(2), st.ByRule[id])
}

// Two requests racing for one single-use rule: exactly one may win it.
func TestOnceConsumptionIsAtomic(t *testing.T) {
	g := NewRegistry()
	req := get("https://example.com/race")
	g.Add(Once(req, respond("winner"), 0))

	const workers = 32
	var wg sync.WaitGroup
	wins := make(chan *Resolution, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res := g.Resolve(req); res != nil {
				wins <- res
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count)
}
