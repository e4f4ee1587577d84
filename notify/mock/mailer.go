// Package mock provides a recording notify.Mailer for tests.
package mock

import (
	"context"
	"sync"

	"github.com/poiesic/lostfound/core"
)

// SentAlert is one recorded call to SendMatchAlert.
type SentAlert struct {
	To        string
	Found     *core.Item
	LostTitle string
}

// MockMailer records every alert it is asked to send.
type MockMailer struct {
	// SendMatchAlertFunc is called by SendMatchAlert if set.
	// If nil, the alert is recorded and nil is returned.
	SendMatchAlertFunc func(ctx context.Context, to string, found *core.Item, lostTitle string) error

	mu        sync.Mutex
	callCount int
	sent      []SentAlert
}

// NewMockMailer creates a mailer that accepts every alert.
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// SendMatchAlert records the alert. Only alerts for which SendMatchAlertFunc
// returns nil are added to Sent.
func (m *MockMailer) SendMatchAlert(ctx context.Context, to string, found *core.Item, lostTitle string) error {
	m.mu.Lock()
	m.callCount++
	fn := m.SendMatchAlertFunc
	m.mu.Unlock()

	if fn != nil {
		if err := fn(ctx, to, found, lostTitle); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentAlert{To: to, Found: found, LostTitle: lostTitle})
	return nil
}

// CallCount returns the number of SendMatchAlert calls, failed ones included.
func (m *MockMailer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Sent returns a copy of the successfully sent alerts.
func (m *MockMailer) Sent() []SentAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentAlert, len(m.sent))
	copy(out, m.sent)
	return out
}

// Recipients returns the addresses of successfully sent alerts.
func (m *MockMailer) Recipients() []string {
	sent := m.Sent()
	out := make([]string, len(sent))
	for i, s := range sent {
		out[i] = s.To
	}
	return out
}

// Reset clears recorded alerts and custom behavior.
func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.sent = nil
	m.SendMatchAlertFunc = nil
}
