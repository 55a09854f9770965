package direct

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arnadev/SaaS-review-Scraper/internal/scrape"
)

// scriptedTransport serves a fixed sequence of status codes and records the
// User-Agent header of every request.
type scriptedTransport struct {
	statuses []int
	calls    int
	agents   []string
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.agents = append(s.agents, req.Header.Get("User-Agent"))
	status := http.StatusOK
	if s.calls < len(s.statuses) {
		status = s.statuses[s.calls]
	}
	s.calls++
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader("<html><body>page</body></html>")),
		Header:     http.Header{"Content-Type": {"text/html"}},
		Request:    req,
	}, nil
}

// recordingPauser records every wait without sleeping.
type recordingPauser struct {
	waits []time.Duration
}

func (p *recordingPauser) Pause(_ context.Context, d time.Duration) {
	p.waits = append(p.waits, d)
}

func newTestFetcher(t *testing.T, transport *scriptedTransport) (*Fetcher, *recordingPauser) {
	t.Helper()
	pauser := &recordingPauser{}
	f := New(Config{
		MaxRetries: 3,
		BaseDelay:  100 * time.Millisecond,
		Transport:  transport,
	}, pauser, nil)
	return f, pauser
}

func TestAcquireSuccess(t *testing.T) {
	t.Parallel()

	transport := &scriptedTransport{statuses: []int{http.StatusOK}}
	f, pauser := newTestFetcher(t, transport)

	page, err := f.Acquire(context.Background(), scrape.Request{URL: "https://reviews.example/acme?page=1"})
	require.NoError(t, err)
	require.Contains(t, page.Content, "page")
	require.Equal(t, 1, transport.calls)
	require.Empty(t, pauser.waits)
}

func TestAcquireRateLimitedBacksOffExponentially(t *testing.T) {
	t.Parallel()

	transport := &scriptedTransport{statuses: []int{429, 429, 200}}
	f, pauser := newTestFetcher(t, transport)

	page, err := f.Acquire(context.Background(), scrape.Request{URL: "https://reviews.example/acme"})
	require.NoError(t, err)
	require.NotEmpty(t, page.Content)
	require.Equal(t, 3, transport.calls)
	require.Len(t, pauser.waits, 2, "exactly one wait per rate-limited attempt")
	require.Greater(t, pauser.waits[1], pauser.waits[0], "waits must strictly increase")
}

func TestAcquireNotFoundNeverRetries(t *testing.T) {
	t.Parallel()

	transport := &scriptedTransport{statuses: []int{404}}
	f, pauser := newTestFetcher(t, transport)

	_, err := f.Acquire(context.Background(), scrape.Request{URL: "https://reviews.example/missing"})
	require.ErrorIs(t, err, scrape.ErrNotFound)
	require.Equal(t, 1, transport.calls)
	require.Empty(t, pauser.waits)
}

func TestAcquireForbiddenRotatesAgent(t *testing.T) {
	t.Parallel()

	transport := &scriptedTransport{statuses: []int{403, 403, 200}}
	f, _ := newTestFetcher(t, transport)

	_, err := f.Acquire(context.Background(), scrape.Request{URL: "https://reviews.example/acme"})
	require.NoError(t, err)
	require.Len(t, transport.agents, 3)
	require.NotEqual(t, transport.agents[0], transport.agents[1])
	require.NotEqual(t, transport.agents[1], transport.agents[2])
}

func TestAcquireForbiddenRotationPersistsAcrossCalls(t *testing.T) {
	t.Parallel()

	transport := &scriptedTransport{statuses: []int{403, 200, 403, 200}}
	f, _ := newTestFetcher(t, transport)

	_, err := f.Acquire(context.Background(), scrape.Request{URL: "https://reviews.example/a"})
	require.NoError(t, err)
	_, err = f.Acquire(context.Background(), scrape.Request{URL: "https://reviews.example/b"})
	require.NoError(t, err)

	// The second call starts from the rotated agent, not the pool head.
	require.Equal(t, transport.agents[1], transport.agents[2])
	require.NotEqual(t, transport.agents[0], transport.agents[2])
}

func TestAcquireTransientExhaustion(t *testing.T) {
	t.Parallel()

	transport := &scriptedTransport{statuses: []int{500, 502, 503}}
	f, pauser := newTestFetcher(t, transport)

	_, err := f.Acquire(context.Background(), scrape.Request{URL: "https://reviews.example/acme"})
	require.ErrorIs(t, err, scrape.ErrTransport)
	require.Equal(t, 3, transport.calls)
	require.Len(t, pauser.waits, 2, "linear backoff between transient attempts")
	require.Greater(t, pauser.waits[1], pauser.waits[0])
}
