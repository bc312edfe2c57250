package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/studiovx/outreach-backend/internal/model"
)

type AssignmentRepositoryInterface interface {
	GetBySite(siteID string) (*model.Assignment, error)
	Upsert(a *model.Assignment) error
	MarkSent(siteID, messageID string, at time.Time) error
}

type AssignmentRepository struct {
	DB *sql.DB
}

// GetBySite returns the site's assignment with its sent-message history, or
// nil when the site has no script assigned yet.
func (r *AssignmentRepository) GetBySite(siteID string) (*model.Assignment, error) {
	query := `
        SELECT id, site_id, script_id, custom_values, created_at, updated_at
        FROM script_assignments
        WHERE site_id = $1
    `
	var a model.Assignment
	var customValues []byte
	err := r.DB.QueryRow(query, siteID).Scan(&a.ID, &a.SiteID, &a.ScriptID, &customValues, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	a.CustomValues = map[string]string{}
	if len(customValues) > 0 {
		if err := json.Unmarshal(customValues, &a.CustomValues); err != nil {
			return nil, err
		}
	}

	sentQuery := `
        SELECT message_id, sent_at
        FROM assignment_sent_messages
        WHERE assignment_id = $1
        ORDER BY sent_at ASC
    `
	rows, err := r.DB.Query(sentQuery, a.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	a.SentMessages = []model.SentMessage{}
	for rows.Next() {
		var s model.SentMessage
		if err := rows.Scan(&s.MessageID, &s.SentAt); err != nil {
			return nil, err
		}
		a.SentMessages = append(a.SentMessages, s)
	}
	return &a, rows.Err()
}

// Upsert creates the assignment for a site or replaces its script and
// variable values. One assignment per site.
func (r *AssignmentRepository) Upsert(a *model.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	values, err := json.Marshal(a.CustomValues)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO script_assignments (id, site_id, script_id, custom_values, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (site_id) DO UPDATE
        SET script_id = EXCLUDED.script_id,
            custom_values = EXCLUDED.custom_values,
            updated_at = NOW()
        RETURNING id
    `
	return r.DB.QueryRow(query, a.ID, a.SiteID, a.ScriptID, values, a.CreatedAt).Scan(&a.ID)
}

// MarkSent records one send event. Idempotent: marking the same message
// twice keeps the first timestamp.
func (r *AssignmentRepository) MarkSent(siteID, messageID string, at time.Time) error {
	query := `
        INSERT INTO assignment_sent_messages (assignment_id, message_id, sent_at)
        SELECT id, $2, $3 FROM script_assignments WHERE site_id = $1
        ON CONFLICT (assignment_id, message_id) DO NOTHING
    `
	_, err := r.DB.Exec(query, siteID, messageID, at)
	return err
}

var _ AssignmentRepositoryInterface = (*AssignmentRepository)(nil)
