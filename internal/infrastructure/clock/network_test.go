package clock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	serverTime = time.Date(2024, time.January, 10, 1, 0, 0, 0, time.UTC)
	localTime  = time.Date(2024, time.January, 9, 12, 0, 0, 0, time.UTC)
)

func newTestClock(t *testing.T, url string, ttl time.Duration) *Network {
	t.Helper()
	n, err := NewNetwork(NetworkConfig{URL: url, Timeout: 200 * time.Millisecond, CacheTTL: ttl})
	require.NoError(t, err)
	n.local = func() time.Time { return localTime }
	return n
}

func dateServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
		assert.NotEmpty(t, r.URL.Query().Get("t"))
		w.Header().Set("Date", serverTime.Format(http.TimeFormat))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNetwork_UsesDateHeader(t *testing.T) {
	var hits atomic.Int32
	srv := dateServer(t, &hits)
	n := newTestClock(t, srv.URL, 0)

	got := n.Now(context.Background())

	assert.True(t, got.Equal(serverTime), "got %s", got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestNetwork_CachesOffset(t *testing.T) {
	var hits atomic.Int32
	srv := dateServer(t, &hits)
	n := newTestClock(t, srv.URL, time.Minute)

	first := n.Now(context.Background())

	// Local clock advances; the cached offset is applied to it.
	localTime2 := localTime.Add(30 * time.Second)
	n.local = func() time.Time { return localTime2 }
	second := n.Now(context.Background())

	assert.Equal(t, int32(1), hits.Load())
	assert.True(t, first.Equal(serverTime))
	assert.True(t, second.Equal(serverTime.Add(30*time.Second)))

	// After the TTL the offset is measured again.
	n.local = func() time.Time { return localTime.Add(2 * time.Minute) }
	n.Now(context.Background())
	assert.Equal(t, int32(2), hits.Load())
}

func TestNetwork_ZeroTTLFetchesEveryTime(t *testing.T) {
	var hits atomic.Int32
	srv := dateServer(t, &hits)
	n := newTestClock(t, srv.URL, 0)

	n.Now(context.Background())
	n.Now(context.Background())

	assert.Equal(t, int32(2), hits.Load())
}

func TestNetwork_FallsBackToLocalClock(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "missing date header",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header()["Date"] = nil
			},
		},
		{
			name: "unparseable date header",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Date", "yesterday")
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			n := newTestClock(t, srv.URL, 0)

			got := n.Now(context.Background())

			assert.True(t, got.Equal(localTime), "got %s", got)
		})
	}
}

func TestNetwork_CancelledCallerDoesNotCacheFallback(t *testing.T) {
	var hits atomic.Int32
	srv := dateServer(t, &hits)
	n := newTestClock(t, srv.URL, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n.Now(ctx)

	got := n.Now(context.Background())
	assert.True(t, got.Equal(serverTime), "got %s", got)
}

func TestNetwork_ConcurrentCallersShareRequest(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Header().Set("Date", serverTime.Format(http.TimeFormat))
	}))
	t.Cleanup(srv.Close)
	n := newTestClock(t, srv.URL, time.Minute)

	const callers = 8
	results := make(chan time.Time, callers)
	for range callers {
		go func() { results <- n.Now(context.Background()) }()
	}

	require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)

	for range callers {
		got := <-results
		assert.True(t, got.Equal(serverTime), "got %s", got)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestNetwork_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	n := newTestClock(t, url, 0)

	assert.True(t, n.Now(context.Background()).Equal(localTime))
}

func TestNetwork_EmptyURLUsesLocalClock(t *testing.T) {
	n := newTestClock(t, "", time.Minute)
	assert.True(t, n.Now(context.Background()).Equal(localTime))
}

func TestNewNetwork_InvalidURL(t *testing.T) {
	_, err := NewNetwork(NetworkConfig{URL: "not a url"})
	assert.Error(t, err)
}

func TestFixed(t *testing.T) {
	at := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.FixedZone("CST", 8*3600))
	got := Fixed(at).Now(context.Background())
	assert.True(t, got.Equal(at))
	assert.Equal(t, time.UTC, got.Location())
}
