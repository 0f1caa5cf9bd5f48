package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/logging"
	"skywatch/crewdeck/internal/metrics"
)

// Fetcher loads the current value of a query from the store
type Fetcher func(ctx context.Context) (any, error)

// errSuperseded marks a fetch whose key was invalidated or cancelled while
// it ran. Its result is dropped and waiting readers rejoin.
var errSuperseded = errors.New("cache: fetch superseded")

type EventKind string

const (
	EventInvalidated EventKind = "invalidated"
	EventUpdated     EventKind = "updated"
)

// Event is delivered to observers after a key changes state
type Event struct {
	Key  Key       `json:"key"`
	Kind EventKind `json:"kind"`
}

// State is a read-only snapshot of one entry
type State struct {
	Data       any
	Err        error
	UpdatedAt  time.Time
	IsStale    bool
	IsFetching bool
}

type Options struct {
	// GCTime drops entries nobody read for this long
	GCTime time.Duration
	// RetryDelay is the wait before the single read retry
	RetryDelay time.Duration
	// Retries is the number of read retries, 1 when zero
	Retries int
	Metrics *metrics.MetricsRegistry
	Now     func() time.Time
}

type entry struct {
	key         Key
	data        any
	hasData     bool
	err         error
	updatedAt   time.Time
	staleTime   time.Duration
	invalidated bool
	gen         uint64
	fetching    bool
	cancel      context.CancelFunc
}

type observer struct {
	prefix Key
	fn     func(Event)
}

// Client is the process-wide query cache. It is safe for concurrent use and
// meant to be built once and injected.
type Client struct {
	mu      sync.Mutex
	store   *gocache.Cache
	group   singleflight.Group
	opts    Options
	nextObs int
	obs     map[int]observer
}

func NewClient(opts Options) *Client {
	if opts.GCTime <= 0 {
		opts.GCTime = 5 * time.Minute
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.Retries <= 0 {
		opts.Retries = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Client{
		store: gocache.New(opts.GCTime, opts.GCTime),
		opts:  opts,
		obs:   make(map[int]observer),
	}
}

// lookup returns the entry for key, creating it when absent, and refreshes
// its GC deadline. Caller holds c.mu.
func (c *Client) lookup(key Key) *entry {
	id := key.id()
	if v, ok := c.store.Get(id); ok {
		e := v.(*entry)
		c.store.Set(id, e, c.opts.GCTime)
		return e
	}
	e := &entry{key: append(Key(nil), key...)}
	c.store.Set(id, e, c.opts.GCTime)
	return e
}

func (c *Client) peek(key Key) (*entry, bool) {
	v, ok := c.store.Get(key.id())
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

// fresh judges e against the reader's stale time. Caller holds c.mu.
func (c *Client) fresh(e *entry, staleTime time.Duration) bool {
	return e.hasData && !e.invalidated && c.opts.Now().Sub(e.updatedAt) < staleTime
}

// Query returns the cached value of key while it is fresh, otherwise it
// fetches. Concurrent callers share one in-flight fetch. A caller whose ctx
// ends stops waiting but the fetch continues for the others.
func (c *Client) Query(ctx context.Context, key Key, staleTime time.Duration, fetch Fetcher) (any, error) {
	for {
		c.mu.Lock()
		e := c.lookup(key)
		e.staleTime = staleTime
		if c.fresh(e, staleTime) {
			data := e.data
			c.mu.Unlock()
			c.opts.Metrics.CacheHit(key.Entity())
			return data, nil
		}
		gen := e.gen
		c.mu.Unlock()
		c.opts.Metrics.CacheMiss(key.Entity())

		flight := fmt.Sprintf("%s#%d", key.id(), gen)
		ch := c.group.DoChan(flight, func() (any, error) {
			return c.fetch(ctx, e, gen, fetch)
		})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-ch:
			if errors.Is(res.Err, errSuperseded) {
				continue
			}
			return res.Val, res.Err
		}
	}
}

func (c *Client) fetch(ctx context.Context, e *entry, gen uint64, fetch Fetcher) (any, error) {
	entity := e.key.Entity()

	c.mu.Lock()
	if e.gen != gen {
		c.mu.Unlock()
		return nil, errSuperseded
	}
	// keep request values such as the actor, drop the caller's deadline
	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.fetching = true
	e.cancel = cancel
	c.mu.Unlock()

	val, err := c.withRetry(fctx, fetch)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e.gen != gen {
		c.opts.Metrics.CacheFetch(entity, "superseded")
		return nil, errSuperseded
	}
	e.fetching = false
	e.cancel = nil
	if err != nil {
		e.err = err
		c.opts.Metrics.CacheFetch(entity, "error")
		logging.Warn("Query fetch failed", "key", e.key.String(), "error", err.Error())
		return nil, err
	}
	e.data = val
	e.hasData = true
	e.err = nil
	e.updatedAt = c.opts.Now()
	e.invalidated = false
	c.store.Set(e.key.id(), e, c.opts.GCTime)
	c.opts.Metrics.CacheFetch(entity, "ok")
	return val, nil
}

// withRetry retries transient read failures once with exponential backoff.
// Validation and authorization errors are returned immediately.
func (c *Client) withRetry(ctx context.Context, fetch Fetcher) (any, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.opts.RetryDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.opts.Retries)), ctx)

	var val any
	err := backoff.Retry(func() error {
		v, err := fetch(ctx)
		if err != nil {
			if apperrors.IsPermanent(err) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		val = v
		return nil
	}, policy)
	return val, err
}

// supersede aborts an in-flight fetch of e. Caller holds c.mu.
func (c *Client) supersede(e *entry) {
	e.gen++
	if e.fetching {
		e.cancel()
		e.fetching = false
		e.cancel = nil
	}
}

// Invalidate marks every entry under prefix stale and cancels its in-flight
// fetch. The next read refetches. Returns the number of entries matched.
func (c *Client) Invalidate(prefix Key) int {
	var matched []Key
	c.mu.Lock()
	for _, item := range c.store.Items() {
		e := item.Object.(*entry)
		if !e.key.HasPrefix(prefix) {
			continue
		}
		e.invalidated = true
		c.supersede(e)
		matched = append(matched, e.key)
	}
	c.mu.Unlock()

	c.opts.Metrics.CacheInvalidated(prefix.Entity(), len(matched))
	sort.Slice(matched, func(i, j int) bool { return matched[i].String() < matched[j].String() })
	for _, k := range matched {
		c.notify(Event{Key: k, Kind: EventInvalidated})
	}
	return len(matched)
}

// Cancel aborts the in-flight fetch of exactly key without marking it stale
func (c *Client) Cancel(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.peek(key); ok {
		c.supersede(e)
	}
}

// SetQueryData writes a value directly, superseding any in-flight fetch
func (c *Client) SetQueryData(key Key, data any) {
	c.mu.Lock()
	e := c.lookup(key)
	c.supersede(e)
	e.data = data
	e.hasData = true
	e.err = nil
	e.invalidated = false
	e.updatedAt = c.opts.Now()
	c.mu.Unlock()

	c.notify(Event{Key: key, Kind: EventUpdated})
}

// GetQueryData returns the cached value regardless of staleness
func (c *Client) GetQueryData(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.peek(key)
	if !ok || !e.hasData {
		return nil, false
	}
	return e.data, true
}

func (c *Client) State(key Key) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.peek(key)
	if !ok {
		return State{}, false
	}
	return State{
		Data:       e.data,
		Err:        e.err,
		UpdatedAt:  e.updatedAt,
		IsStale:    !c.fresh(e, e.staleTime),
		IsFetching: e.fetching,
	}, true
}

// Keys lists cached keys under prefix, sorted
func (c *Client) Keys(prefix Key) []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	var keys []Key
	for _, item := range c.store.Items() {
		if e := item.Object.(*entry); e.key.HasPrefix(prefix) {
			keys = append(keys, e.key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Observe calls fn for every event on a key under prefix. fn runs on the
// mutating goroutine and must not block. The returned func stops delivery.
func (c *Client) Observe(prefix Key, fn func(Event)) func() {
	c.mu.Lock()
	id := c.nextObs
	c.nextObs++
	c.obs[id] = observer{prefix: append(Key(nil), prefix...), fn: fn}
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.obs, id)
		c.mu.Unlock()
	}
}

func (c *Client) notify(ev Event) {
	c.mu.Lock()
	fns := make([]func(Event), 0, len(c.obs))
	for _, o := range c.obs {
		if ev.Key.HasPrefix(o.prefix) {
			fns = append(fns, o.fn)
		}
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Fetch is the typed form of Query
func Fetch[T any](ctx context.Context, c *Client, key Key, staleTime time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.Query(ctx, key, staleTime, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: key %s holds %T", key, v)
	}
	return t, nil
}
