package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/studiovx/outreach-backend/internal/controller"
	appErrors "github.com/studiovx/outreach-backend/internal/errors"
	"github.com/studiovx/outreach-backend/internal/layout"
	"github.com/studiovx/outreach-backend/internal/logger"
	"github.com/studiovx/outreach-backend/internal/model"
	"github.com/studiovx/outreach-backend/internal/service"
)

// --- Mock Repositories ---

type MockScriptRepo struct{}

func (m *MockScriptRepo) GetByID(id string) (*model.Script, error) {
	if id == "missing" {
		return nil, appErrors.NewScriptNotFound(id)
	}
	return &model.Script{ID: id, Name: "Primeiro contato", Active: true}, nil
}
func (m *MockScriptRepo) Create(s *model.Script) error              { return nil }
func (m *MockScriptRepo) Update(s *model.Script) error              { return nil }
func (m *MockScriptRepo) UpdateActive(id string, active bool) error { return nil }
func (m *MockScriptRepo) ListScripts(offset, limit int, active string) ([]*model.Script, int, error) {
	return []*model.Script{}, 0, nil
}

type MockMessageRepo struct {
	messages []model.ScriptMessage
}

func (m *MockMessageRepo) ListForScript(scriptID string) ([]model.ScriptMessage, error) {
	return m.messages, nil
}
func (m *MockMessageRepo) GetByID(id string) (*model.ScriptMessage, error) {
	for i := range m.messages {
		if m.messages[i].ID == id {
			return &m.messages[i], nil
		}
	}
	return nil, nil
}
func (m *MockMessageRepo) UpdatePositions(scriptID string, positions map[string]layout.Position) error {
	return nil
}

type MockAssignmentRepo struct {
	assignment *model.Assignment
}

func (m *MockAssignmentRepo) GetBySite(siteID string) (*model.Assignment, error) {
	return m.assignment, nil
}
func (m *MockAssignmentRepo) Upsert(a *model.Assignment) error { return nil }
func (m *MockAssignmentRepo) MarkSent(siteID, messageID string, at time.Time) error {
	return nil
}

type MockSiteRepo struct{}

func (m *MockSiteRepo) GetByID(id string) (*model.Site, error) {
	return &model.Site{
		ID: id, CompanyName: "Padaria Central", ContactName: "Marcos",
		City: "Curitiba", Segment: "food", ProposalURL: "https://p.example.com/1",
	}, nil
}
func (m *MockSiteRepo) ListAll() ([]model.Site, error) { return nil, nil }

type MockQueue struct {
	published int
}

func (q *MockQueue) Publish(topic string, payload any) error {
	q.published++
	return nil
}
func (q *MockQueue) Subscribe(topic string, handler func(payload any) error) error { return nil }

func strPtr(s string) *string { return &s }

func newController(messages []model.ScriptMessage, assignment *model.Assignment) (*controller.ScriptController, *MockQueue) {
	q := &MockQueue{}
	svc := &service.ScriptService{
		ScriptRepo:     &MockScriptRepo{},
		MessageRepo:    &MockMessageRepo{messages: messages},
		AssignmentRepo: &MockAssignmentRepo{assignment: assignment},
		SiteRepo:       &MockSiteRepo{},
		Queue:          q,
		Log:            logger.NewNop(),
	}
	return &controller.ScriptController{ScriptService: svc}, q
}

func withURLParams(r *http.Request, params map[string]string) *http.Request {
	ctx := chi.NewRouteContext()
	for k, v := range params {
		ctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, ctx))
}

// --- Tests ---

func TestPersonalizedPreviewHandler(t *testing.T) {
	messages := []model.ScriptMessage{
		{ID: "m1", ScriptID: "s1", Order: 0, Type: model.MessageTypeText,
			Content: "Oi {{contact_name}} da *{{company_name}}*!"},
	}
	ctrl, _ := newController(messages, nil)

	body := map[string]interface{}{"site_id": "site-1"}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest("POST", "/scripts/s1/personalized-preview", bytes.NewReader(b))
	req = withURLParams(req, map[string]string{"id": "s1"})
	w := httptest.NewRecorder()

	ctrl.PersonalizedPreview(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var res service.Preview
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(res.Bubbles) != 1 {
		t.Fatalf("expected 1 bubble, got %d", len(res.Bubbles))
	}
	if !strings.Contains(res.Bubbles[0].Text, "Marcos") {
		t.Errorf("expected 'Marcos' in preview, got %q", res.Bubbles[0].Text)
	}
}

func TestGetMindMapCorruptedScript(t *testing.T) {
	messages := []model.ScriptMessage{
		{ID: "m1", ScriptID: "s1", ParentID: strPtr("m2")},
		{ID: "m2", ScriptID: "s1", ParentID: strPtr("m1")},
	}
	ctrl, _ := newController(messages, nil)

	req := httptest.NewRequest("GET", "/scripts/s1/mindmap", nil)
	req = withURLParams(req, map[string]string{"id": "s1"})
	w := httptest.NewRecorder()

	ctrl.GetMindMap(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(w.Body.String(), "corrupted script structure") {
		t.Errorf("expected corrupted-structure message, got %q", w.Body.String())
	}
}

func TestGetMindMapOK(t *testing.T) {
	messages := []model.ScriptMessage{
		{ID: "m1", ScriptID: "s1", Order: 0, Type: model.MessageTypeText, Content: "a"},
		{ID: "m2", ScriptID: "s1", ParentID: strPtr("m1"), Order: 0, Type: model.MessageTypeText, Content: "b"},
	}
	ctrl, _ := newController(messages, nil)

	req := httptest.NewRequest("GET", "/scripts/s1/mindmap", nil)
	req = withURLParams(req, map[string]string{"id": "s1"})
	w := httptest.NewRecorder()

	ctrl.GetMindMap(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var res service.MindMap
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(res.Nodes) != 2 {
		t.Errorf("expected 2 nodes, got %d", len(res.Nodes))
	}
}

func TestMarkMessageSentHandler(t *testing.T) {
	messages := []model.ScriptMessage{
		{ID: "m1", ScriptID: "s1", Type: model.MessageTypeText, Content: "a"},
	}
	assignment := &model.Assignment{ID: "a1", SiteID: "site-1", ScriptID: "s1"}
	ctrl, q := newController(messages, assignment)

	req := httptest.NewRequest("POST", "/sites/site-1/messages/m1/sent", nil)
	req = withURLParams(req, map[string]string{"siteID": "site-1", "messageID": "m1"})
	w := httptest.NewRecorder()

	ctrl.MarkMessageSent(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if q.published != 1 {
		t.Errorf("expected 1 published event, got %d", q.published)
	}
}

func TestGetScriptDetailsNotFound(t *testing.T) {
	ctrl, _ := newController(nil, nil)

	req := httptest.NewRequest("GET", "/scripts/missing", nil)
	req = withURLParams(req, map[string]string{"id": "missing"})
	w := httptest.NewRecorder()

	ctrl.GetScriptDetails(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
