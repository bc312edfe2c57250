package repository

import (
	"database/sql"

	"github.com/studiovx/outreach-backend/internal/layout"
	"github.com/studiovx/outreach-backend/internal/model"
)

// MessageRepositoryInterface defines methods used by service
type MessageRepositoryInterface interface {
	ListForScript(scriptID string) ([]model.ScriptMessage, error)
	GetByID(id string) (*model.ScriptMessage, error)
	UpdatePositions(scriptID string, positions map[string]layout.Position) error
}

// MessageRepository is the concrete implementation
type MessageRepository struct {
	DB *sql.DB
}

// ListForScript fetches a script's messages ordered for layout and preview:
// roots first, then by sibling order, insertion order breaking ties.
func (r *MessageRepository) ListForScript(scriptID string) ([]model.ScriptMessage, error) {
	query := `
        SELECT id, script_id, parent_id, sort_order, type, content, condition, image_url, position_x, position_y, created_at
        FROM script_messages
        WHERE script_id = $1
        ORDER BY parent_id NULLS FIRST, sort_order ASC, created_at ASC
    `
	rows, err := r.DB.Query(query, scriptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.ScriptMessage{}
	for rows.Next() {
		var m model.ScriptMessage
		var condition, imageURL sql.NullString
		if err := rows.Scan(&m.ID, &m.ScriptID, &m.ParentID, &m.Order, &m.Type, &m.Content, &condition, &imageURL, &m.PositionX, &m.PositionY, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Condition = model.Condition(condition.String)
		m.ImageURL = imageURL.String
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// GetByID fetches a single message
func (r *MessageRepository) GetByID(id string) (*model.ScriptMessage, error) {
	query := `
        SELECT id, script_id, parent_id, sort_order, type, content, condition, image_url, position_x, position_y, created_at
        FROM script_messages
        WHERE id = $1
    `
	var m model.ScriptMessage
	var condition, imageURL sql.NullString
	err := r.DB.QueryRow(query, id).Scan(&m.ID, &m.ScriptID, &m.ParentID, &m.Order, &m.Type, &m.Content, &condition, &imageURL, &m.PositionX, &m.PositionY, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	m.Condition = model.Condition(condition.String)
	m.ImageURL = imageURL.String
	return &m, nil
}

// UpdatePositions persists operator-placed mind-map coordinates in one
// transaction so a dropped connection never leaves half a layout saved.
func (r *MessageRepository) UpdatePositions(scriptID string, positions map[string]layout.Position) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}

	query := `UPDATE script_messages SET position_x=$1, position_y=$2 WHERE id=$3 AND script_id=$4`
	for id, pos := range positions {
		if _, err := tx.Exec(query, pos.X, pos.Y, id, scriptID); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)
