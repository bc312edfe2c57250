// internal/service/script_service.go
package service

import (
	"time"

	"go.uber.org/zap"

	appErrors "github.com/studiovx/outreach-backend/internal/errors"
	"github.com/studiovx/outreach-backend/internal/layout"
	"github.com/studiovx/outreach-backend/internal/model"
	"github.com/studiovx/outreach-backend/internal/preview"
	"github.com/studiovx/outreach-backend/internal/queue"
	"github.com/studiovx/outreach-backend/internal/repository"
	"github.com/studiovx/outreach-backend/internal/template"
)

type ScriptService struct {
	ScriptRepo     repository.ScriptRepositoryInterface
	MessageRepo    repository.MessageRepositoryInterface
	AssignmentRepo repository.AssignmentRepositoryInterface
	SiteRepo       repository.SiteRepositoryInterface
	Queue          queue.Queue
	Log            *zap.Logger
}

// MindMapNode is one positioned card of the mind-map view. ParentID lets the
// rendering layer draw the connecting edge.
type MindMapNode struct {
	Message  model.ScriptMessage `json:"message"`
	Position layout.Position     `json:"position"`
	ParentID *string             `json:"parent_id,omitempty"`
}

type MindMap struct {
	ScriptID string        `json:"script_id"`
	Nodes    []MindMapNode `json:"nodes"`
}

// Preview is the simulated conversation for one site.
type Preview struct {
	ScriptID   string             `json:"script_id"`
	SiteID     string             `json:"site_id"`
	Variables  template.Variables `json:"variables"`
	Unresolved []string           `json:"unresolved"`
	Bubbles    []preview.Bubble   `json:"bubbles"`
}

type ScriptDetails struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Active       bool           `json:"active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    *time.Time     `json:"updated_at"`
	MessageCount int            `json:"message_count"`
	Stats        map[string]int `json:"stats"`
}

// DefaultVariables builds the per-recipient variable map from the site
// profile. Stored custom values and request overrides layer on top.
func (s *ScriptService) DefaultVariables(site *model.Site) template.Variables {
	return template.Variables{
		"company_name":  site.CompanyName,
		"contact_name":  site.ContactName,
		"city":          site.City,
		"segment":       site.Segment,
		"proposal_link": site.ProposalURL,
	}
}

// BuildMindMap lays out a script's messages for the tree-diagram view.
// Structural errors from the layout engine pass through unchanged so the
// controller can report a corrupted script instead of hanging.
func (s *ScriptService) BuildMindMap(scriptID string) (*MindMap, error) {
	if _, err := s.ScriptRepo.GetByID(scriptID); err != nil {
		return nil, err
	}

	messages, err := s.MessageRepo.ListForScript(scriptID)
	if err != nil {
		return nil, err
	}

	positions, err := layout.Layout(messages)
	if err != nil {
		return nil, err
	}

	nodes := make([]MindMapNode, 0, len(messages))
	for _, m := range messages {
		nodes = append(nodes, MindMapNode{
			Message:  m,
			Position: positions[m.ID],
			ParentID: m.ParentID,
		})
	}
	return &MindMap{ScriptID: scriptID, Nodes: nodes}, nil
}

// SaveLayout persists operator-dragged node positions.
func (s *ScriptService) SaveLayout(scriptID string, positions map[string]layout.Position) error {
	if _, err := s.ScriptRepo.GetByID(scriptID); err != nil {
		return err
	}
	return s.MessageRepo.UpdatePositions(scriptID, positions)
}

// Variables returns the merged variable map for a site: profile defaults,
// then stored custom values, then the optional override.
func (s *ScriptService) Variables(siteID string, override map[string]string) (template.Variables, error) {
	site, err := s.SiteRepo.GetByID(siteID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, appErrors.NewSiteNotFound(siteID)
	}

	assignment, err := s.AssignmentRepo.GetBySite(siteID)
	if err != nil {
		return nil, err
	}

	stored := template.Variables{}
	if assignment != nil {
		stored = assignment.CustomValues
	}
	return template.Merge(s.DefaultVariables(site), stored, template.Variables(override)), nil
}

// BuildPreview renders the simulated conversation for a site. An empty
// scriptID falls back to the site's assigned script.
func (s *ScriptService) BuildPreview(scriptID, siteID string, override map[string]string) (*Preview, error) {
	site, err := s.SiteRepo.GetByID(siteID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, appErrors.NewSiteNotFound(siteID)
	}

	assignment, err := s.AssignmentRepo.GetBySite(siteID)
	if err != nil {
		return nil, err
	}

	if scriptID == "" {
		if assignment == nil {
			return nil, appErrors.NewAssignmentNotFound(siteID)
		}
		scriptID = assignment.ScriptID
	}
	if _, err := s.ScriptRepo.GetByID(scriptID); err != nil {
		return nil, err
	}

	messages, err := s.MessageRepo.ListForScript(scriptID)
	if err != nil {
		return nil, err
	}

	stored := template.Variables{}
	sent := map[string]time.Time{}
	if assignment != nil {
		stored = assignment.CustomValues
		sent = assignment.SentSet()
	}
	vars := template.Merge(s.DefaultVariables(site), stored, template.Variables(override))

	bubbles := preview.Render(messages, vars, sent)

	// Distinct unresolved names across the whole script, first-seen order
	seen := map[string]bool{}
	unresolved := []string{}
	for _, b := range bubbles {
		for _, name := range b.Unresolved {
			if !seen[name] {
				seen[name] = true
				unresolved = append(unresolved, name)
			}
		}
	}

	return &Preview{
		ScriptID:   scriptID,
		SiteID:     siteID,
		Variables:  vars,
		Unresolved: unresolved,
		Bubbles:    bubbles,
	}, nil
}

// AssignScript binds a script to a site, seeding variables from the site
// profile and layering the operator's edited values on top.
func (s *ScriptService) AssignScript(siteID, scriptID string, values map[string]string) (*model.Assignment, error) {
	site, err := s.SiteRepo.GetByID(siteID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, appErrors.NewSiteNotFound(siteID)
	}
	if _, err := s.ScriptRepo.GetByID(scriptID); err != nil {
		return nil, err
	}

	assignment := &model.Assignment{
		SiteID:       siteID,
		ScriptID:     scriptID,
		CustomValues: template.Merge(s.DefaultVariables(site), template.Variables(values)),
	}
	if err := s.AssignmentRepo.Upsert(assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// MarkMessageSent validates the message and assignment, then publishes the
// send event; the queue subscriber (or the RabbitMQ worker) records it.
func (s *ScriptService) MarkMessageSent(siteID, messageID string) error {
	msg, err := s.MessageRepo.GetByID(messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return appErrors.NewMessageNotFound(messageID)
	}

	assignment, err := s.AssignmentRepo.GetBySite(siteID)
	if err != nil {
		return err
	}
	if assignment == nil {
		return appErrors.NewAssignmentNotFound(siteID)
	}

	event := queue.SendEvent{
		SiteID:    siteID,
		MessageID: messageID,
		SentAt:    time.Now(),
	}
	if err := s.Queue.Publish(queue.TopicSendEvents, event); err != nil {
		s.Log.Warn("failed to enqueue send event",
			zap.String("site_id", siteID),
			zap.String("message_id", messageID),
			zap.Error(err))
		return err
	}
	return nil
}

// ResolveMessage returns one message's content with the site's variables
// substituted, for the outbound-link UI hook.
func (s *ScriptService) ResolveMessage(siteID, messageID string) (string, error) {
	msg, err := s.MessageRepo.GetByID(messageID)
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", appErrors.NewMessageNotFound(messageID)
	}

	vars, err := s.Variables(siteID, nil)
	if err != nil {
		return "", err
	}
	return template.Resolve(msg.Content, vars), nil
}

// CreateScript creates a script in draft (inactive) state unless asked
// otherwise.
func (s *ScriptService) CreateScript(name string, active bool) (*model.Script, error) {
	script := &model.Script{
		Name:   name,
		Active: active,
	}
	if err := s.ScriptRepo.Create(script); err != nil {
		return nil, err
	}
	return script, nil
}

// ListScripts fetches scripts with pagination
func (s *ScriptService) ListScripts(page, pageSize int, active string) ([]model.Script, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.ScriptRepo.ListScripts(offset, pageSize, active)
	if err != nil {
		return nil, nil, err
	}

	scripts := make([]model.Script, len(ptrs))
	for i, sc := range ptrs {
		scripts[i] = *sc
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return scripts, pagination, nil
}

// GetScriptDetails fetches a script with per-type message counts.
func (s *ScriptService) GetScriptDetails(scriptID string) (*ScriptDetails, error) {
	script, err := s.ScriptRepo.GetByID(scriptID)
	if err != nil {
		return nil, err
	}

	messages, err := s.MessageRepo.ListForScript(scriptID)
	if err != nil {
		return nil, err
	}

	stats := map[string]int{
		"text":        0,
		"image":       0,
		"conditional": 0,
		"roots":       0,
	}
	for i := range messages {
		stats[string(messages[i].Type)]++
		if messages[i].IsRoot() {
			stats["roots"]++
		}
	}

	return &ScriptDetails{
		ID:           script.ID,
		Name:         script.Name,
		Active:       script.Active,
		CreatedAt:    script.CreatedAt,
		UpdatedAt:    script.UpdatedAt,
		MessageCount: len(messages),
		Stats:        stats,
	}, nil
}
