package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/studiovx/outreach-backend/internal/errors"
	"github.com/studiovx/outreach-backend/internal/model"
)

type ScriptRepositoryInterface interface {
	Create(s *model.Script) error
	GetByID(id string) (*model.Script, error)
	Update(s *model.Script) error
	UpdateActive(id string, active bool) error
	ListScripts(offset, limit int, active string) ([]*model.Script, int, error)
}

type ScriptRepository struct {
	DB *sql.DB
}

func (r *ScriptRepository) Create(s *model.Script) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = time.Now()
	query := `
        INSERT INTO scripts (id, name, active, created_at)
        VALUES ($1, $2, $3, $4)
    `
	_, err := r.DB.Exec(query, s.ID, s.Name, s.Active, s.CreatedAt)
	return err
}

func (r *ScriptRepository) Update(s *model.Script) error {
	query := `
        UPDATE scripts
        SET name=$1, active=$2, updated_at=NOW()
        WHERE id=$3
    `
	_, err := r.DB.Exec(query, s.Name, s.Active, s.ID)
	return err
}

func (r *ScriptRepository) UpdateActive(id string, active bool) error {
	query := `UPDATE scripts SET active=$1, updated_at=$2 WHERE id=$3`
	_, err := r.DB.Exec(query, active, time.Now(), id)
	return err
}

func (r *ScriptRepository) GetByID(id string) (*model.Script, error) {
	query := `
        SELECT id, name, active, created_at, updated_at
        FROM scripts WHERE id=$1
    `
	var s model.Script
	err := r.DB.QueryRow(query, id).Scan(&s.ID, &s.Name, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewScriptNotFound(id)
		}
		return nil, err
	}
	return &s, nil
}

func (r *ScriptRepository) ListScripts(offset, limit int, active string) ([]*model.Script, int, error) {
	scripts := []*model.Script{}
	query := `SELECT id, name, active, created_at, updated_at FROM scripts WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if active != "" {
		query += fmt.Sprintf(" AND active=$%d", argPos)
		args = append(args, active == "true")
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		s := &model.Script{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		scripts = append(scripts, s)
	}

	// Count total
	countQuery := `SELECT COUNT(*) FROM scripts WHERE 1=1`
	argsCount := []interface{}{}
	if active != "" {
		countQuery += " AND active=$1"
		argsCount = append(argsCount, active == "true")
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return scripts, total, nil
}

var _ ScriptRepositoryInterface = (*ScriptRepository)(nil)
