package clock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/rezkam/taskflow/internal/domain"
)

const (
	// DefaultTimeout bounds a single network time request.
	DefaultTimeout = 2 * time.Second

	// DefaultCacheTTL is how long a measured offset is reused.
	DefaultCacheTTL = 5 * time.Minute

	meterName = "github.com/rezkam/taskflow/internal/infrastructure/clock"
)

// NetworkConfig configures a Network clock.
type NetworkConfig struct {
	// URL receives HEAD requests. Empty disables the network source.
	URL string

	// Timeout bounds each request (zero = DefaultTimeout).
	Timeout time.Duration

	// CacheTTL is how long a measured offset is reused (zero = no caching).
	CacheTTL time.Duration

	// HTTPClient performs the request (nil = a new client).
	HTTPClient *http.Client

	// Logger receives fallback warnings (nil = slog.Default()).
	Logger *slog.Logger
}

// Network derives the current instant from the Date header of an HTTP
// response, so that day boundaries agree across clients whose local clocks
// disagree. It never fails: on any error it falls back to the local clock.
//
// The offset between network and local time is cached for CacheTTL, so at
// most one request is made per TTL window. A failed request is cached as a
// zero offset for the same window, which keeps an unreachable time server
// from adding a timeout to every call.
type Network struct {
	url      string
	timeout  time.Duration
	cacheTTL time.Duration
	client   *http.Client
	logger   *slog.Logger
	local    func() time.Time

	fallbacks metric.Int64Counter
	inflight  singleflight.Group

	mu         sync.Mutex
	offset     time.Duration
	measured   bool
	measuredAt time.Time
}

// NewNetwork creates a Network clock from cfg.
func NewNetwork(cfg NetworkConfig) (*Network, error) {
	if cfg.URL != "" {
		if _, err := url.ParseRequestURI(cfg.URL); err != nil {
			return nil, fmt.Errorf("invalid time url %q: %w", cfg.URL, err)
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	fallbacks, err := otel.Meter(meterName).Int64Counter(
		"taskflow.clock.fallbacks",
		metric.WithDescription("Times the network clock fell back to the local clock"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback counter: %w", err)
	}

	return &Network{
		url:       cfg.URL,
		timeout:   cfg.Timeout,
		cacheTTL:  cfg.CacheTTL,
		client:    cfg.HTTPClient,
		logger:    cfg.Logger,
		local:     func() time.Time { return time.Now().UTC() },
		fallbacks: fallbacks,
	}, nil
}

// Now returns the best-effort current instant in UTC.
//
// Concurrent callers share one request. It runs detached from ctx so a
// caller that goes away cannot leave a fallback in the cache; that caller
// gets the local clock instead.
func (n *Network) Now(ctx context.Context) time.Time {
	local := n.local()
	if n.url == "" {
		return local
	}

	if offset, ok := n.cachedOffset(local); ok {
		return local.Add(offset)
	}

	result := n.inflight.DoChan("offset", func() (any, error) {
		return n.measure(context.WithoutCancel(ctx)), nil
	})
	select {
	case res := <-result:
		return local.Add(res.Val.(time.Duration))
	case <-ctx.Done():
		return local
	}
}

func (n *Network) cachedOffset(local time.Time) (time.Duration, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.measured && n.cacheTTL > 0 && local.Sub(n.measuredAt) < n.cacheTTL {
		return n.offset, true
	}
	return 0, false
}

// measure queries the time server and records the resulting offset.
func (n *Network) measure(ctx context.Context) time.Duration {
	var offset time.Duration
	networkNow, err := n.fetch(ctx)
	local := n.local()
	if err != nil {
		n.logger.WarnContext(ctx, "using local clock",
			"url", n.url,
			"error", err)
		n.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", fallbackReason(err))))
	} else {
		offset = networkNow.Sub(local)
	}

	n.mu.Lock()
	n.offset = offset
	n.measured = true
	n.measuredAt = local
	n.mu.Unlock()

	return offset
}

func (n *Network) fetch(ctx context.Context) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, n.url, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", domain.ErrClockUnavailable, err)
	}
	q := req.URL.Query()
	q.Set("t", strconv.FormatInt(n.local().UnixMilli(), 10))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Cache-Control", "no-store")

	resp, err := n.client.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", domain.ErrClockUnavailable, err)
	}
	defer resp.Body.Close()

	header := resp.Header.Get("Date")
	if header == "" {
		return time.Time{}, fmt.Errorf("%w: %w", domain.ErrClockUnavailable, errMissingDate)
	}
	t, err := http.ParseTime(header)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad Date header %q: %w", domain.ErrClockUnavailable, header, err)
	}
	return t.UTC(), nil
}

var errMissingDate = errors.New("response has no Date header")

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, errMissingDate):
		return "missing_date"
	default:
		return "error"
	}
}
