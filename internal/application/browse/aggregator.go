// Package browse accumulates paginated search results into one
// deduplicated list that can be extended page by page.
package browse

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
)

// Status is the aggregator lifecycle state
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusError   Status = "error"
)

// Searcher fetches one page of products
type Searcher interface {
	Search(ctx context.Context, query excursion.SearchQuery, locale excursion.Locale) (*excursion.SearchResult, error)
}

// State is an immutable view of the aggregator
type State struct {
	Term       string
	Status     Status
	Items      []excursion.ProductSummary
	Page       int
	HasMore    bool
	TotalCount int
	Err        string
	Epoch      uint64
}

// Aggregator merges search pages for one term, dropping products already
// shown. At most one fetch is in flight; a term change supersedes it.
type Aggregator struct {
	searcher Searcher
	pageSize int
	locale   excursion.Locale
	filters  excursion.SearchFilters
	onChange func(State)
	logger   *zap.Logger

	mu       sync.Mutex
	state    State
	seen     map[string]struct{}
	inFlight context.CancelFunc
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithPageSize sets the page size requested from the searcher
func WithPageSize(n int) Option {
	return func(a *Aggregator) {
		a.pageSize = n
	}
}

// WithLocale sets the currency and language of every search
func WithLocale(l excursion.Locale) Option {
	return func(a *Aggregator) {
		a.locale = l
	}
}

// WithFilters applies filters to every search
func WithFilters(f excursion.SearchFilters) Option {
	return func(a *Aggregator) {
		a.filters = f
	}
}

// WithOnChange registers a callback invoked after every state transition.
// It runs outside the lock on the goroutine that caused the transition.
func WithOnChange(fn func(State)) Option {
	return func(a *Aggregator) {
		a.onChange = fn
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) {
		a.logger = l
	}
}

// New creates an idle Aggregator
func New(searcher Searcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		searcher: searcher,
		pageSize: excursion.DefaultPageSize,
		logger:   zap.NewNop(),
		state:    State{Status: StatusIdle},
		seen:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.pageSize < 1 || a.pageSize > excursion.MaxPageSize {
		a.pageSize = excursion.DefaultPageSize
	}
	return a
}

// Snapshot returns a copy of the current state
func (a *Aggregator) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// SearchChanged resets the list and loads page 1 of term, superseding any
// fetch in flight. A blank term returns the aggregator to idle. It blocks
// until the page is applied or discarded and reports whether a fetch ran.
func (a *Aggregator) SearchChanged(ctx context.Context, term string) bool {
	term = strings.TrimSpace(term)

	a.mu.Lock()
	a.cancelInFlightLocked()
	if term == "" {
		a.resetLocked("")
		a.state.Status = StatusIdle
		snap := a.snapshotLocked()
		a.mu.Unlock()
		a.notify(snap)
		return false
	}
	a.resetLocked(term)
	return a.startLocked(ctx, 1)
}

// Refresh reloads page 1 of the current term. It is a no-op returning false
// while a fetch is in flight or before any search.
func (a *Aggregator) Refresh(ctx context.Context) bool {
	a.mu.Lock()
	if a.state.Status == StatusLoading || a.state.Term == "" {
		a.mu.Unlock()
		return false
	}
	a.resetLocked(a.state.Term)
	return a.startLocked(ctx, 1)
}

// LoadMore appends the next page. It is a no-op returning false while a
// fetch is in flight, after an error, or when the upstream has no more pages.
func (a *Aggregator) LoadMore(ctx context.Context) bool {
	a.mu.Lock()
	if a.state.Status != StatusLoaded || !a.state.HasMore {
		a.mu.Unlock()
		return false
	}
	return a.startLocked(ctx, a.state.Page+1)
}

// resetLocked clears accumulated results and starts a new epoch
func (a *Aggregator) resetLocked(term string) {
	a.state = State{
		Term:   term,
		Status: a.state.Status,
		Epoch:  a.state.Epoch + 1,
	}
	a.seen = make(map[string]struct{})
}

func (a *Aggregator) cancelInFlightLocked() {
	if a.inFlight != nil {
		a.inFlight()
		a.inFlight = nil
	}
}

// startLocked marks the aggregator loading, releases the lock and runs the
// fetch. The caller must hold the lock.
func (a *Aggregator) startLocked(ctx context.Context, page int) bool {
	fetchCtx, cancel := context.WithCancel(ctx)
	a.inFlight = cancel
	a.state.Status = StatusLoading
	a.state.Err = ""

	epoch := a.state.Epoch
	query := excursion.SearchQuery{
		Term:     a.state.Term,
		Page:     page,
		PageSize: a.pageSize,
		Filters:  a.filters,
	}
	snap := a.snapshotLocked()
	a.mu.Unlock()

	a.notify(snap)
	a.fetch(fetchCtx, cancel, epoch, query)
	return true
}

func (a *Aggregator) fetch(ctx context.Context, cancel context.CancelFunc, epoch uint64, query excursion.SearchQuery) {
	defer cancel()

	result, err := a.searcher.Search(ctx, query, a.locale)

	a.mu.Lock()
	if epoch != a.state.Epoch {
		a.mu.Unlock()
		a.logger.Debug("discarding superseded page",
			zap.String("term", query.Term),
			zap.Int("page", query.Page),
		)
		return
	}
	a.inFlight = nil

	if err != nil {
		a.state.Status = StatusError
		a.state.HasMore = false
		a.state.Err = err.Error()
		snap := a.snapshotLocked()
		a.mu.Unlock()

		a.logger.Warn("search page failed",
			zap.String("term", query.Term),
			zap.Int("page", query.Page),
			zap.Error(err),
		)
		a.notify(snap)
		return
	}

	added := 0
	for _, p := range result.Products {
		if _, dup := a.seen[p.ProductCode]; dup {
			continue
		}
		a.seen[p.ProductCode] = struct{}{}
		a.state.Items = append(a.state.Items, p)
		added++
	}
	a.state.Status = StatusLoaded
	a.state.Page = query.Page
	a.state.HasMore = result.HasMore
	a.state.TotalCount = result.TotalCount
	snap := a.snapshotLocked()
	a.mu.Unlock()

	a.logger.Debug("search page applied",
		zap.String("term", query.Term),
		zap.Int("page", query.Page),
		zap.Int("received", len(result.Products)),
		zap.Int("added", added),
	)
	a.notify(snap)
}

func (a *Aggregator) snapshotLocked() State {
	s := a.state
	s.Items = append([]excursion.ProductSummary(nil), a.state.Items...)
	return s
}

func (a *Aggregator) notify(s State) {
	if a.onChange != nil {
		a.onChange(s)
	}
}
