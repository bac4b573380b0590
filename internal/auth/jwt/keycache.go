package jwt

import (
	"context"
	"crypto"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/clearway/tokengate/internal/observability"
)

// Default refresh scheduling for the key cache.
const (
	DefaultRefreshInterval = 24 * time.Hour
	DefaultRetryInterval   = time.Hour

	fetchTimeout     = 30 * time.Second
	maxKeySetBody    = 1 << 20
	maxErrorBodySize = 1024
)

// FetchFunc fetches a URL and returns the HTTP status and body. The key
// cache treats any error or non-200 status as ErrServiceUnavailable.
type FetchFunc func(ctx context.Context, url string) (status int, body []byte, err error)

// KeyCache maintains a locally cached set of verification keys fetched
// from a remote key-publishing endpoint.
//
// The key map has exactly one writer, the refresh loop, and any number of
// concurrent readers. Each successful refresh replaces the map wholesale,
// so a reader observes either the mapping before a refresh or the mapping
// after it, never a mix. A failed refresh leaves the previous mapping
// untouched.
type KeyCache struct {
	url             string
	fetch           FetchFunc
	refreshInterval time.Duration
	retryInterval   time.Duration
	logger          observability.Logger
	metrics         *Metrics

	mu   sync.RWMutex
	keys map[KeyRef]crypto.PublicKey

	stopOnce sync.Once
	stopCh   chan struct{}
}

// KeyCacheOption is a functional option for the key cache.
type KeyCacheOption func(*KeyCache)

// WithRefreshInterval sets the interval between refreshes after success.
func WithRefreshInterval(interval time.Duration) KeyCacheOption {
	return func(c *KeyCache) {
		c.refreshInterval = interval
	}
}

// WithRetryInterval sets the interval before retrying after a failure.
func WithRetryInterval(interval time.Duration) KeyCacheOption {
	return func(c *KeyCache) {
		c.retryInterval = interval
	}
}

// WithFetchFunc sets the fetch function used to retrieve the key set.
func WithFetchFunc(fetch FetchFunc) KeyCacheOption {
	return func(c *KeyCache) {
		c.fetch = fetch
	}
}

// WithKeyCacheLogger sets the logger for the key cache.
func WithKeyCacheLogger(logger observability.Logger) KeyCacheOption {
	return func(c *KeyCache) {
		c.logger = logger
	}
}

// WithKeyCacheMetrics sets the metrics for the key cache.
func WithKeyCacheMetrics(metrics *Metrics) KeyCacheOption {
	return func(c *KeyCache) {
		c.metrics = metrics
	}
}

// WithHTTPClient sets the HTTP client used by the default fetch function.
func WithHTTPClient(client *http.Client) KeyCacheOption {
	return func(c *KeyCache) {
		c.fetch = httpFetch(client)
	}
}

// NewKeyCache creates a key cache for the given keystore URL. The cache
// starts empty; call Refresh or Start to populate it.
func NewKeyCache(url string, opts ...KeyCacheOption) *KeyCache {
	c := &KeyCache{
		url:             url,
		refreshInterval: DefaultRefreshInterval,
		retryInterval:   DefaultRetryInterval,
		logger:          observability.NopLogger(),
		keys:            make(map[KeyRef]crypto.PublicKey),
		stopCh:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.fetch == nil {
		c.fetch = httpFetch(&http.Client{Timeout: fetchTimeout})
	}
	if c.metrics == nil {
		c.metrics = NewMetrics("tokengate")
	}

	return c
}

// httpFetch builds a FetchFunc backed by an HTTP client.
func httpFetch(client *http.Client) FetchFunc {
	return func(ctx context.Context, url string) (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return 0, nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
			return resp.StatusCode, body, nil
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxKeySetBody))
		if err != nil {
			return resp.StatusCode, nil, err
		}
		return resp.StatusCode, body, nil
	}
}

// Lookup returns the cached key for a (kty, kid) pair. It is a pure read
// against the current mapping and never performs I/O.
func (c *KeyCache) Lookup(kty, kid string) (crypto.PublicKey, error) {
	c.mu.RLock()
	key, ok := c.keys[KeyRef{Kty: kty, Kid: kid}]
	c.mu.RUnlock()

	if !ok {
		c.metrics.RecordCacheMiss()
		return nil, ErrKeyNotFound
	}
	c.metrics.RecordCacheHit()
	return key, nil
}

// Resolve implements KeyResolver by mapping the algorithm id to its key
// type and looking the key up in the cache. HMAC secrets are shared out
// of band and are never cached, so HMAC algorithms report ErrKeyNotFound.
func (c *KeyCache) Resolve(alg, kid string) (crypto.PublicKey, error) {
	family, _, err := ResolveAlg(alg)
	if err != nil {
		return nil, err
	}

	kty := family.KeyType()
	if kty == "" {
		return nil, ErrKeyNotFound
	}
	return c.Lookup(kty, kid)
}

// Refresh fetches the key set once and atomically replaces the mapping.
// Keys absent from the new document are dropped; on failure the previous
// mapping is left untouched.
func (c *KeyCache) Refresh(ctx context.Context) error {
	start := time.Now()

	err := c.refresh(ctx)
	if err != nil {
		c.metrics.RecordJWKSRefresh("error", time.Since(start))
		return err
	}

	c.metrics.RecordJWKSRefresh("success", time.Since(start))
	return nil
}

func (c *KeyCache) refresh(ctx context.Context) error {
	if c.url == "" {
		return fmt.Errorf("%w: no keystore URL configured", ErrServiceUnavailable)
	}

	status, body, err := c.fetch(ctx, c.url)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: keystore returned status %d", ErrServiceUnavailable, status)
	}

	keys, err := ParseKeySet(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	c.mu.Lock()
	c.keys = keys
	c.mu.Unlock()

	c.logger.Info("key set refreshed",
		observability.String("url", c.url),
		observability.Int("keys", len(keys)),
	)

	return nil
}

// Start runs the refresh loop until ctx is canceled or Stop is called.
// A successful refresh schedules the next one after the refresh interval;
// a failure schedules a retry after the shorter retry interval.
func (c *KeyCache) Start(ctx context.Context) {
	go func() {
		timer := time.NewTimer(c.nextInterval(c.Refresh(ctx)))
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stopCh:
				return
			case <-timer.C:
				timer.Reset(c.nextInterval(c.Refresh(ctx)))
			}
		}
	}()
}

// nextInterval picks the delay before the next refresh attempt and logs
// the outcome of the previous one.
func (c *KeyCache) nextInterval(err error) time.Duration {
	if err != nil {
		c.logger.Warn("key set refresh failed",
			observability.Error(err),
			observability.Duration("retry_in", c.retryInterval),
		)
		return c.retryInterval
	}
	return c.refreshInterval
}

// Stop stops the refresh loop. Safe to call multiple times.
func (c *KeyCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

// URL returns the keystore URL.
func (c *KeyCache) URL() string {
	return c.url
}

// Ensure KeyCache implements KeyResolver.
var _ KeyResolver = (*KeyCache)(nil)
