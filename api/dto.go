package api

import (
	"time"

	"github.com/poiesic/lostfound/core"
	"github.com/poiesic/lostfound/notify"
	"github.com/poiesic/lostfound/report"
)

// CreateUserRequest is the request body for registering a user.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserResponse describes a user.
type UserResponse struct {
	ID        core.ID   `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportRequest is the request body for reporting an item. Type is "lost" or "found".
type ReportRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Type        string `json:"type"`
	ImageRef    string `json:"image_ref"`
}

// MatchRequest is the request body for a dry-run match.
type MatchRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Type        string `json:"type"`
}

// ItemResponse describes a stored item.
type ItemResponse struct {
	ID          core.ID   `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	OwnerID     core.ID   `json:"owner_id"`
	ImageRef    string    `json:"image_ref"`
	CreatedAt   time.Time `json:"created_at"`
}

// MatchResponse is one scored match.
type MatchResponse struct {
	Item  ItemResponse `json:"item"`
	Score float64      `json:"score"`
}

// MatchListResponse wraps dry-run matches.
type MatchListResponse struct {
	Matches []MatchResponse `json:"matches"`
}

// NotificationResponse describes a dashboard notification.
type NotificationResponse struct {
	ID          core.ID   `json:"id"`
	MatchItemID core.ID   `json:"match_item_id"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// AlertSummary reports on the email alerts sent for a found item.
type AlertSummary struct {
	Evaluated int    `json:"evaluated"`
	Matches   int    `json:"matches"`
	Notified  int    `json:"notified"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	Error     string `json:"error,omitempty"`
}

// ReportResponse is returned after a report. Error is set when the item was
// stored but matching could not run.
type ReportResponse struct {
	Item          ItemResponse           `json:"item"`
	Matches       []MatchResponse        `json:"matches"`
	Notifications []NotificationResponse `json:"notifications"`
	Alerts        *AlertSummary          `json:"alerts,omitempty"`
	Error         string                 `json:"error,omitempty"`
}

// DashboardResponse is the caller's dashboard.
type DashboardResponse struct {
	User          UserResponse           `json:"user"`
	Items         []ItemResponse         `json:"items"`
	Notifications []NotificationResponse `json:"notifications"`
	Unread        int                    `json:"unread"`
}

// MarkReadRequest lists the notifications to mark read.
type MarkReadRequest struct {
	IDs []core.ID `json:"ids"`
}

// MarkReadResponse reports how many notifications changed.
type MarkReadResponse struct {
	Updated int `json:"updated"`
}

func newUserResponse(u *core.User) UserResponse {
	return UserResponse{ID: u.Id, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

func newItemResponse(item *core.Item) ItemResponse {
	return ItemResponse{
		ID:          item.Id,
		Title:       item.Title,
		Description: item.Description,
		Category:    item.Category,
		Location:    item.Location,
		Type:        item.Type.String(),
		OwnerID:     item.OwnerId,
		ImageRef:    item.ImageRef,
		CreatedAt:   item.CreatedAt,
	}
}

func newItemResponses(items []*core.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, newItemResponse(item))
	}
	return out
}

func newMatchResponses(matches []core.ScoredMatch) []MatchResponse {
	out := make([]MatchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, MatchResponse{Item: newItemResponse(m.Item), Score: m.Score})
	}
	return out
}

func newNotificationResponses(notifications []*core.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, NotificationResponse{
			ID:          n.Id,
			MatchItemID: n.MatchItemId,
			Message:     n.Message,
			Read:        n.Read,
			CreatedAt:   n.CreatedAt,
		})
	}
	return out
}

func newAlertSummary(result *notify.Result, err error) *AlertSummary {
	if result == nil && err == nil {
		return nil
	}
	s := &AlertSummary{}
	if result != nil {
		s.Evaluated = result.Evaluated
		s.Matches = len(result.Matches)
		s.Notified = result.Notified
		s.Skipped = result.Skipped
		s.Failed = len(result.Failures)
	}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

func newReportResponse(outcome *report.Outcome) ReportResponse {
	return ReportResponse{
		Item:          newItemResponse(outcome.Item),
		Matches:       newMatchResponses(outcome.Matches),
		Notifications: newNotificationResponses(outcome.Notifications),
		Alerts:        newAlertSummary(outcome.Alerts, outcome.AlertErr),
	}
}

func newDashboardResponse(d *report.Dashboard) DashboardResponse {
	return DashboardResponse{
		User:          newUserResponse(d.User),
		Items:         newItemResponses(d.Items),
		Notifications: newNotificationResponses(d.Notifications),
		Unread:        d.Unread,
	}
}
