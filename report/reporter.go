package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/lostfound/core"
	"github.com/poiesic/lostfound/match"
	"github.com/poiesic/lostfound/notify"
	"github.com/poiesic/lostfound/storage"
)

// Request describes a new lost or found report.
type Request struct {
	Title       string
	Description string
	Category    string
	Location    string
	Type        core.ItemType
	OwnerId     core.ID
	ImageRef    string
	// CreatedAt defaults to now.
	CreatedAt time.Time
}

func (r Request) item() *core.Item {
	return &core.Item{
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		Category:    strings.TrimSpace(r.Category),
		Location:    strings.TrimSpace(r.Location),
		Type:        r.Type,
		CreatedAt:   r.CreatedAt,
		OwnerId:     r.OwnerId,
		ImageRef:    r.ImageRef,
	}
}

// Outcome is the result of a report.
type Outcome struct {
	// Item is the stored report.
	Item *core.Item
	// Matches are the semantic matches, best first.
	Matches []core.ScoredMatch
	// Notifications are the dashboard notifications created for counterpart owners.
	Notifications []*core.Notification
	// Alerts summarizes the email alerts sent for a found item.
	Alerts *notify.Result
	// AlertErr is set when email alerting could not run.
	AlertErr error
}

// Dashboard is a user's view of their reports and notifications.
type Dashboard struct {
	User          *core.User
	Items         []*core.Item
	Notifications []*core.Notification
	Unread        int
}

// Reporter runs the reporting workflow.
type Reporter struct {
	items         storage.ItemRepository
	users         storage.UserRepository
	notifications storage.NotificationRepository
	matcher       *match.SemanticMatcher
	notifier      *notify.Notifier
	logger        *slog.Logger
}

// Option configures a Reporter.
type Option func(*Reporter) error

// WithNotifier enables email alerts for found items.
// Without one, found items only produce dashboard notifications.
func WithNotifier(notifier *notify.Notifier) Option {
	return func(r *Reporter) error {
		r.notifier = notifier
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reporter) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewReporter creates a reporter.
func NewReporter(
	items storage.ItemRepository,
	users storage.UserRepository,
	notifications storage.NotificationRepository,
	matcher *match.SemanticMatcher,
	opts ...Option,
) (*Reporter, error) {
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if users == nil {
		return nil, ErrUserRepositoryRequired
	}
	if notifications == nil {
		return nil, ErrNotificationRepositoryRequired
	}
	if matcher == nil {
		return nil, ErrMatcherRequired
	}

	r := &Reporter{
		items:         items,
		users:         users,
		notifications: notifications,
		matcher:       matcher,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "reporter")

	return r, nil
}

// RegisterUser creates a user. Email is optional but unique when given.
func (r *Reporter) RegisterUser(ctx context.Context, name, email string) (*core.User, error) {
	user := &core.User{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
	}
	if err := core.ValidateUser(user); err != nil {
		return nil, err
	}

	added, err := r.users.AddUsers(ctx, user)
	if err != nil {
		return nil, err
	}
	r.logger.Info("user registered", "user", added[0].Id)
	return added[0], nil
}

// Report stores a new item and matches it.
//
// The returned Outcome is non-nil whenever the item was stored. If semantic
// matching could not run, the error wraps match.ErrEmbeddingUnavailable and
// the Outcome carries the stored item without matches.
func (r *Reporter) Report(ctx context.Context, req Request) (*Outcome, error) {
	item := req.item()
	if err := core.ValidateItem(item); err != nil {
		return nil, err
	}
	if _, err := r.user(ctx, item.OwnerId); err != nil {
		return nil, err
	}

	added, err := r.items.AddItems(ctx, item)
	if err != nil {
		r.logger.Error("error storing item", "err", err)
		return nil, err
	}
	item = added[0]
	outcome := &Outcome{Item: item}
	r.logger.Info("item reported", "item", item.Id, "type", item.Type, "category", item.Category)

	if item.Type == core.ItemTypeFound && r.notifier != nil {
		outcome.Alerts, outcome.AlertErr = r.notifier.EvaluateFoundItem(ctx, item)
		if outcome.AlertErr != nil {
			r.logger.Error("error sending match alerts", "item", item.Id, "err", outcome.AlertErr)
		}
	}

	matches, err := r.Match(ctx, match.QueryFromItem(item))
	if err != nil {
		return outcome, err
	}
	outcome.Matches = matches

	notifications := r.notificationsFor(item, matches)
	if len(notifications) > 0 {
		stored, err := r.notifications.AddNotifications(ctx, notifications...)
		if err != nil {
			r.logger.Error("error storing notifications", "item", item.Id, "err", err)
			return outcome, err
		}
		outcome.Notifications = stored
	}

	r.logger.Info("item matched", "item", item.Id, "matches", len(matches), "notified", len(outcome.Notifications))
	return outcome, nil
}

// Match runs the semantic matcher for query against every stored item
// without storing anything.
func (r *Reporter) Match(ctx context.Context, query match.Query) ([]core.ScoredMatch, error) {
	corpus, err := r.items.GetItems(ctx)
	if err != nil {
		r.logger.Error("error loading items", "err", err)
		return nil, fmt.Errorf("%w: %w", match.ErrCandidateLookup, err)
	}

	matches, err := r.matcher.Match(ctx, query, corpus)
	if err != nil {
		r.logger.Error("error matching", "err", err)
		return nil, err
	}
	return matches, nil
}

// notificationsFor builds one notification per counterpart owner. The best
// ranked match of each owner names the item; the reporter is never notified.
func (r *Reporter) notificationsFor(item *core.Item, matches []core.ScoredMatch) []*core.Notification {
	seen := make(map[core.ID]bool)
	var out []*core.Notification
	for _, m := range matches {
		recipient := m.Item.OwnerId
		if recipient == item.OwnerId || seen[recipient] {
			continue
		}
		seen[recipient] = true
		out = append(out, &core.Notification{
			RecipientId: recipient,
			MatchItemId: item.Id,
			Message:     Message(item, m.Item),
		})
	}
	return out
}

// Message is the dashboard text sent to the owner of counterpart about item.
func Message(item, counterpart *core.Item) string {
	if item.Type == core.ItemTypeLost {
		return fmt.Sprintf("AI Alert: Someone lost a '%s' that looks like the '%s' you found!", item.Title, counterpart.Title)
	}
	return fmt.Sprintf("AI Alert: Good news! A '%s' was found that matches your lost '%s'!", item.Title, counterpart.Title)
}

// Resolve deletes an item on behalf of its owner.
func (r *Reporter) Resolve(ctx context.Context, userID, itemID core.ID) error {
	item, err := r.items.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.OwnerId != userID {
		r.logger.Warn("resolve refused", "item", itemID, "user", userID)
		return fmt.Errorf("%w: item %d", ErrNotOwner, itemID)
	}

	if err := r.items.DeleteItems(ctx, itemID); err != nil {
		return err
	}
	r.logger.Info("item resolved", "item", itemID)
	return nil
}

// Dashboard returns the user's reports and notifications, newest notification first.
func (r *Reporter) Dashboard(ctx context.Context, userID core.ID) (*Dashboard, error) {
	user, err := r.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := r.items.GetItemsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	notifications, err := r.notifications.GetNotificationsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{User: user, Items: items, Notifications: notifications}
	for _, n := range notifications {
		if !n.Read {
			d.Unread++
		}
	}
	return d, nil
}

// MarkRead marks the user's notifications as read and returns how many changed.
func (r *Reporter) MarkRead(ctx context.Context, userID core.ID, ids ...core.ID) (int, error) {
	return r.notifications.MarkNotificationsRead(ctx, userID, ids...)
}

func (r *Reporter) user(ctx context.Context, id core.ID) (*core.User, error) {
	user, err := r.users.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUser, id)
	}
	return user, err
}
