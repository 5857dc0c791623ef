// Package offline provides a caching http.RoundTripper for the catalog and
// app shell. Same-origin GET responses are cached in a storage backend; a
// cached response is served immediately while a background request
// refreshes it.
package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/logging"
	"github.com/dpshade/prompt-vault/internal/storage"
)

// CacheName namespaces cache entries; bump it to invalidate old caches
const CacheName = "prompt-vault-json-v2"

// KeyPrefix marks offline cache keys in a shared backend
const KeyPrefix = "offline:"

// CacheHeader is set on responses served from the cache
const CacheHeader = "X-Prompt-Vault-Cache"

// ShellPaths are pre-populated by Install
var ShellPaths = []string{"/", "/index.html", "/manifest.webmanifest", "/prompts.json"}

// entry is the persisted form of a cached response
type entry struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"storedAt"`
}

// Shim is a stale-while-revalidate cache in front of another transport
type Shim struct {
	origin  *url.URL
	next    http.RoundTripper
	cache   storage.Backend
	logger  *zap.Logger
	timeout time.Duration

	group singleflight.Group
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// Option configures a Shim
type Option func(*Shim)

// WithTransport sets the network transport, http.DefaultTransport by default
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Shim) { s.next = rt }
}

// WithLogger sets the logger for refresh failures
func WithLogger(logger *zap.Logger) Option {
	return func(s *Shim) { s.logger = logging.OrNop(logger) }
}

// WithRefreshTimeout bounds each background refresh
func WithRefreshTimeout(d time.Duration) Option {
	return func(s *Shim) { s.timeout = d }
}

// New creates a shim for origin that stores entries in cache
func New(origin string, cache storage.Backend, opts ...Option) (*Shim, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, apperrors.ParseError("origin URL", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, apperrors.ValidationError(fmt.Sprintf("origin %q must be absolute", origin))
	}

	s := &Shim{
		origin:  &url.URL{Scheme: u.Scheme, Host: u.Host},
		next:    http.DefaultTransport,
		cache:   cache,
		logger:  zap.NewNop(),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Origin returns the scheme and host the shim caches for
func (s *Shim) Origin() string {
	return s.origin.String()
}

// Client returns an http.Client that routes through the shim
func (s *Shim) Client(timeout time.Duration) *http.Client {
	return &http.Client{Transport: s, Timeout: timeout}
}

// RoundTrip implements http.RoundTripper
func (s *Shim) RoundTrip(req *http.Request) (*http.Response, error) {
	if !s.intercepts(req) {
		return s.next.RoundTrip(req)
	}

	key := cacheKey(req.URL)
	if e, ok := s.lookup(key); ok {
		s.refreshInBackground(key, req)
		return e.response(req), nil
	}

	resp, err := s.next.RoundTrip(req)
	if err != nil {
		return nil, apperrors.NetworkError("fetch "+req.URL.String(), err)
	}
	return s.store(key, resp)
}

func (s *Shim) intercepts(req *http.Request) bool {
	return req.Method == http.MethodGet &&
		req.URL.Scheme == s.origin.Scheme &&
		req.URL.Host == s.origin.Host
}

func cacheKey(u *url.URL) string {
	clean := *u
	clean.Fragment = ""
	return KeyPrefix + CacheName + ":" + clean.String()
}

func (s *Shim) lookup(key string) (entry, bool) {
	raw, ok, err := s.cache.Get(key)
	if err != nil || !ok {
		if err != nil {
			s.logger.Warn("offline cache read failed", zap.String("key", key), zap.Error(err))
		}
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		s.logger.Warn("dropping corrupt offline cache entry", zap.String("key", key), zap.Error(err))
		return entry{}, false
	}
	return e, true
}

// store caches a successful response and returns an equivalent one with a
// fresh body. Unsuccessful responses pass through untouched.
func (s *Shim) store(key string, resp *http.Response) (*http.Response, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, apperrors.NetworkError("read response body", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	s.put(key, entry{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: body, StoredAt: time.Now()})
	return resp, nil
}

func (s *Shim) put(key string, e entry) {
	raw, err := json.Marshal(e)
	if err != nil {
		s.logger.Error("failed to encode offline cache entry", zap.Error(err))
		return
	}
	if err := s.cache.Set(key, raw); err != nil {
		s.logger.Warn("offline cache write dropped", zap.String("key", key),
			zap.Error(apperrors.StorageError("cache "+key, err)))
	}
}

func (s *Shim) refreshInBackground(key string, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, err, _ := s.group.Do(key, func() (interface{}, error) {
			return nil, s.refresh(key, req)
		})
		if err != nil {
			s.logger.Debug("offline refresh failed, keeping cached copy",
				zap.String("url", req.URL.String()), zap.Error(err))
		}
	}()
}

func (s *Shim) refresh(key string, orig *http.Request) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, orig.URL.String(), nil)
	if err != nil {
		return err
	}
	req.Header = orig.Header.Clone()

	resp, err := s.next.RoundTrip(req)
	if err != nil {
		return err
	}
	resp, err = s.store(key, resp)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Install fetches paths, ShellPaths when none are given, and caches them
// all. Nothing is cached unless every fetch succeeds.
func (s *Shim) Install(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		paths = ShellPaths
	}

	entries := make([]entry, len(paths))
	keys := make([]string, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, p := range paths {
		ref, err := url.Parse(p)
		if err != nil {
			return apperrors.ParseError("path "+p, err)
		}
		u := s.origin.ResolveReference(ref)
		keys[i] = cacheKey(u)

		g.Go(func() error {
			e, err := s.fetch(gctx, u.String())
			if err != nil {
				return err
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, key := range keys {
		s.put(key, entries[i])
	}
	s.logger.Info("offline cache installed", zap.String("cache", CacheName), zap.Int("entries", len(keys)))
	return nil
}

func (s *Shim) fetch(ctx context.Context, rawURL string) (entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return entry{}, err
	}
	resp, err := s.next.RoundTrip(req)
	if err != nil {
		return entry{}, apperrors.NetworkError("install "+rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return entry{}, apperrors.NewAppError(apperrors.ErrCodeNetworkFailure,
			fmt.Sprintf("install %s: unexpected status %d", rawURL, resp.StatusCode))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return entry{}, apperrors.NetworkError("read "+rawURL, err)
	}
	return entry{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: body, StoredAt: time.Now()}, nil
}

// Purge removes every entry of this cache and returns how many were removed
func (s *Shim) Purge() (int, error) {
	keys, err := s.cache.Keys()
	if err != nil {
		return 0, err
	}
	prefix := KeyPrefix + CacheName + ":"
	removed := 0
	for _, key := range keys {
		if strings.HasPrefix(key, prefix) {
			if err := s.cache.Remove(key); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

// Close stops scheduling refreshes and waits for running ones
func (s *Shim) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

func (e entry) response(req *http.Request) *http.Response {
	header := e.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Set(CacheHeader, "hit")
	header.Set("Content-Length", strconv.Itoa(len(e.Body)))
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status)),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}
