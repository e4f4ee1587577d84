package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lostfound/core"
	"github.com/poiesic/lostfound/match"
	"github.com/poiesic/lostfound/storage"
)

// Failure records an alert that could not be delivered.
type Failure struct {
	LostItemId core.ID
	Err        error
}

// Result summarizes one evaluation of a found item.
type Result struct {
	// Evaluated is the number of same-category lost items that were scored.
	Evaluated int
	// Matches are the pairs above the threshold, best first.
	Matches []core.ScoredMatch
	// Notified is the number of alerts delivered.
	Notified int
	// Skipped counts matches whose owner is unknown or has no email address.
	Skipped int
	// Failures lists alerts that failed, in no particular order.
	Failures []Failure
}

// Err joins all delivery failures, or returns nil when there were none.
func (r *Result) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f.Err
	}
	return errors.Join(errs...)
}

// Notifier emails owners of lost items that resemble a newly found item.
type Notifier struct {
	candidates  CandidateSource
	users       UserLookup
	mailer      Mailer
	matcher     *match.CoarseMatcher
	pool        *ants.Pool
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// Option configures a Notifier.
type Option func(*Notifier) error

// WithPoolSize sets the number of alerts delivered concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(n *Notifier) error {
		if size < 1 {
			size = 1
		}
		if n.pool != nil {
			n.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		n.pool = pool
		return nil
	}
}

// WithRetry retries each failed delivery up to maxAttempts times in total,
// doubling baseDelay between attempts. Default is a single attempt.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(n *Notifier) error {
		if maxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}
		n.maxAttempts = maxAttempts
		n.retryDelay = baseDelay
		return nil
	}
}

// WithThreshold overrides match.DefaultCoarseThreshold.
func WithThreshold(threshold float64) Option {
	return func(n *Notifier) error {
		m, err := match.NewCoarseMatcher(match.WithCoarseThreshold(threshold))
		if err != nil {
			return err
		}
		n.matcher = m
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) error {
		if logger == nil {
			logger = slog.Default()
		}
		n.logger = logger
		return nil
	}
}

// NewNotifier creates a notifier. Release must be called when it is no longer needed.
func NewNotifier(candidates CandidateSource, users UserLookup, mailer Mailer, opts ...Option) (*Notifier, error) {
	if candidates == nil {
		return nil, ErrCandidateSourceRequired
	}
	if users == nil {
		return nil, ErrUserLookupRequired
	}
	if mailer == nil {
		return nil, ErrMailerRequired
	}

	matcher, err := match.NewCoarseMatcher()
	if err != nil {
		return nil, err
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	n := &Notifier{
		candidates:  candidates,
		users:       users,
		mailer:      mailer,
		matcher:     matcher,
		pool:        pool,
		maxAttempts: 1,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(n); optErr != nil {
			n.Release()
			return nil, optErr
		}
	}
	n.logger = n.logger.With("component", "notifier")

	return n, nil
}

// Threshold returns the combined score a pair must exceed.
func (n *Notifier) Threshold() float64 {
	return n.matcher.Threshold()
}

// EvaluateFoundItem compares found with every lost item in its category and
// emails the owner of each qualifying lost item once. It blocks until every
// alert has been attempted. Only a failed candidate lookup or a non-found item
// is returned as an error; delivery problems are reported in the Result.
func (n *Notifier) EvaluateFoundItem(ctx context.Context, found *core.Item) (*Result, error) {
	if found == nil {
		return nil, fmt.Errorf("%w: no item", match.ErrMalformedQuery)
	}
	if found.Type != core.ItemTypeFound {
		return nil, fmt.Errorf("%w: expected a found item, got %s", match.ErrMalformedQuery, found.Type)
	}

	corpus, err := n.candidates.LostItemsByCategory(ctx, found.Category)
	if err != nil {
		n.logger.Error("error looking up candidates", "category", found.Category, "err", err)
		return nil, fmt.Errorf("%w: %w", match.ErrCandidateLookup, err)
	}

	query := match.QueryFromItem(found)
	candidates := n.matcher.SelectCandidates(query, corpus)
	matches, err := n.matcher.Score(ctx, query, candidates)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Evaluated: len(candidates),
		Matches:   matches,
	}
	n.logger.Debug("evaluated found item", "item", found.Id, "candidates", len(candidates), "matches", len(matches))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	record := func(lost *core.Item, sent bool, err error) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case err != nil:
			result.Failures = append(result.Failures, Failure{LostItemId: lost.Id, Err: err})
		case sent:
			result.Notified++
		default:
			result.Skipped++
		}
	}

	for _, m := range matches {
		lost := m.Item
		wg.Add(1)
		task := func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					n.logger.Error("panic delivering alert", "lostItem", lost.Id, "panic", r)
					record(lost, false, fmt.Errorf("%w: lost item %d: panic: %v", ErrNotificationDelivery, lost.Id, r))
				}
			}()
			sent, err := n.alert(ctx, found, lost)
			record(lost, sent, err)
		}
		if err := n.pool.Submit(task); err != nil {
			wg.Done()
			n.logger.Error("error submitting alert", "lostItem", lost.Id, "err", err)
			record(lost, false, fmt.Errorf("%w: lost item %d: %w", ErrNotificationDelivery, lost.Id, err))
		}
	}
	wg.Wait()

	n.logger.Info("found item alerts finished", "item", found.Id, "matches", len(matches),
		"notified", result.Notified, "skipped", result.Skipped, "failed", len(result.Failures))
	return result, nil
}

// alert emails the owner of lost. It reports false with a nil error when the
// owner cannot be contacted.
func (n *Notifier) alert(ctx context.Context, found, lost *core.Item) (bool, error) {
	owner, err := n.users.GetUser(ctx, lost.OwnerId)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && owner == nil) {
		n.logger.Warn("skipping alert, owner not found", "lostItem", lost.Id, "owner", lost.OwnerId)
		return false, nil
	}
	if err != nil {
		n.logger.Error("error looking up owner", "lostItem", lost.Id, "owner", lost.OwnerId, "err", err)
		return false, fmt.Errorf("%w: lost item %d: %w", ErrNotificationDelivery, lost.Id, err)
	}
	if !owner.HasEmail() {
		n.logger.Info("skipping alert, owner has no email", "lostItem", lost.Id, "owner", owner.Id)
		return false, nil
	}

	to := strings.TrimSpace(owner.Email)
	err = RetryWithBackoff(ctx, func() error {
		return n.mailer.SendMatchAlert(ctx, to, found, lost.Title)
	}, n.maxAttempts, n.retryDelay, n.logger)
	if err != nil {
		n.logger.Error("error sending alert", "lostItem", lost.Id, "owner", owner.Id, "err", err)
		return false, fmt.Errorf("%w: lost item %d: %w", ErrNotificationDelivery, lost.Id, err)
	}

	n.logger.Info("alert sent", "lostItem", lost.Id, "owner", owner.Id)
	return true, nil
}

// Release releases the worker pool.
// The notifier should not be used after calling Release.
func (n *Notifier) Release() {
	if n.pool != nil {
		n.pool.Release()
	}
}
