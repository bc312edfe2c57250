// internal/controller/script_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/studiovx/outreach-backend/internal/errors"
	"github.com/studiovx/outreach-backend/internal/layout"
	"github.com/studiovx/outreach-backend/internal/service"
)

type ScriptController struct {
	ScriptService *service.ScriptService
}

func (c *ScriptController) CreateScript(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	script, err := c.ScriptService.CreateScript(body.Name, body.Active)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(script)
}

func (c *ScriptController) ListScripts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	active := r.URL.Query().Get("active")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	scripts, pagination, err := c.ScriptService.ListScripts(page, pageSize, active)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":       scripts,
		"pagination": pagination,
	})
}

func (c *ScriptController) GetScriptDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	details, err := c.ScriptService.GetScriptDetails(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(details)
}

// GetMindMap returns positioned nodes for the tree-diagram view. A script
// whose parent references form a cycle comes back as 422 so the UI can show
// "corrupted script structure" instead of spinning.
func (c *ScriptController) GetMindMap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	mindMap, err := c.ScriptService.BuildMindMap(id)
	if err != nil {
		var structural *layout.StructuralError
		if errors.As(err, &structural) {
			http.Error(w, "corrupted script structure: "+structural.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(mindMap)
}

func (c *ScriptController) SaveLayout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Positions map[string]layout.Position `json:"positions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := c.ScriptService.SaveLayout(id, body.Positions); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"script_id": id,
		"saved":     len(body.Positions),
	})
}

func (c *ScriptController) GetPreview(w http.ResponseWriter, r *http.Request) {
	scriptID := chi.URLParam(r, "id")
	siteID := r.URL.Query().Get("site_id")
	if siteID == "" {
		http.Error(w, "site_id is required", http.StatusBadRequest)
		return
	}

	prev, err := c.ScriptService.BuildPreview(scriptID, siteID, nil)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prev)
}

// PersonalizedPreview is the POST variant that accepts override variable
// values without persisting them.
func (c *ScriptController) PersonalizedPreview(w http.ResponseWriter, r *http.Request) {
	scriptID := chi.URLParam(r, "id")

	var body struct {
		SiteID         string            `json:"site_id"`
		OverrideValues map[string]string `json:"override_values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	prev, err := c.ScriptService.BuildPreview(scriptID, body.SiteID, body.OverrideValues)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prev)
}

func (c *ScriptController) AssignScript(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "siteID")

	var body struct {
		ScriptID     string            `json:"script_id"`
		CustomValues map[string]string `json:"custom_values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	assignment, err := c.ScriptService.AssignScript(siteID, body.ScriptID, body.CustomValues)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assignment)
}

func (c *ScriptController) GetVariables(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "siteID")

	vars, err := c.ScriptService.Variables(siteID, nil)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"site_id":   siteID,
		"variables": vars,
	})
}

func (c *ScriptController) MarkMessageSent(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "siteID")
	messageID := chi.URLParam(r, "messageID")

	if err := c.ScriptService.MarkMessageSent(siteID, messageID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"site_id":    siteID,
		"message_id": messageID,
		"status":     "queued",
	})
}

// GetResolvedMessage supplies the resolved text the outbound-link action
// sends; the actual send happens outside this service.
func (c *ScriptController) GetResolvedMessage(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "siteID")
	messageID := chi.URLParam(r, "messageID")

	resolved, err := c.ScriptService.ResolveMessage(siteID, messageID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"site_id":    siteID,
		"message_id": messageID,
		"resolved":   resolved,
	})
}

// writeServiceError maps the not-found sentinels to 404, everything else
// to 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var scriptNF *appErrors.ErrScriptNotFound
	var siteNF *appErrors.ErrSiteNotFound
	var messageNF *appErrors.ErrMessageNotFound
	var assignmentNF *appErrors.ErrAssignmentNotFound
	if errors.As(err, &scriptNF) || errors.As(err, &siteNF) ||
		errors.As(err, &messageNF) || errors.As(err, &assignmentNF) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
