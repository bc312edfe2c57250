package main

import (
	"sync"
	"testing"
	"time"

	"github.com/studiovx/outreach-backend/internal/queue"
)

// MockAssignmentRepo records send events in memory
type MockAssignmentRepo struct {
	sent map[string]time.Time
	mu   sync.Mutex
}

func (m *MockAssignmentRepo) MarkSent(siteID, messageID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := siteID + "/" + messageID
	if _, ok := m.sent[key]; !ok {
		m.sent[key] = at
	}
	return nil
}

func TestProcessEvent(t *testing.T) {
	repo := &MockAssignmentRepo{sent: map[string]time.Time{}}

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	event := queue.SendEvent{SiteID: "site-1", MessageID: "msg-1", SentAt: at}

	if err := processEvent(event, repo); err != nil {
		t.Fatalf("processEvent failed: %v", err)
	}

	got, ok := repo.sent["site-1/msg-1"]
	if !ok {
		t.Fatal("send event not recorded")
	}
	if !got.Equal(at) {
		t.Errorf("expected %v, got %v", at, got)
	}
}

func TestProcessEventFillsTimestamp(t *testing.T) {
	repo := &MockAssignmentRepo{sent: map[string]time.Time{}}

	event := queue.SendEvent{SiteID: "site-2", MessageID: "msg-9"}
	if err := processEvent(event, repo); err != nil {
		t.Fatalf("processEvent failed: %v", err)
	}

	got := repo.sent["site-2/msg-9"]
	if got.IsZero() {
		t.Error("expected a timestamp to be filled in for zero SentAt")
	}
}

func TestProcessEventIdempotent(t *testing.T) {
	repo := &MockAssignmentRepo{sent: map[string]time.Time{}}

	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	processEvent(queue.SendEvent{SiteID: "s", MessageID: "m", SentAt: first}, repo)
	processEvent(queue.SendEvent{SiteID: "s", MessageID: "m", SentAt: second}, repo)

	if got := repo.sent["s/m"]; !got.Equal(first) {
		t.Errorf("expected first timestamp to win, got %v", got)
	}
}
