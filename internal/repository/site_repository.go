package repository

import (
	"database/sql"

	"github.com/studiovx/outreach-backend/internal/model"
)

// SiteRepositoryInterface defines methods used by service
type SiteRepositoryInterface interface {
	GetByID(id string) (*model.Site, error)
	ListAll() ([]model.Site, error)
}

// SiteRepository is the concrete implementation
type SiteRepository struct {
	DB *sql.DB
}

// GetByID fetches a site (lead) by ID
func (r *SiteRepository) GetByID(id string) (*model.Site, error) {
	query := `
        SELECT id, company_name, contact_name, city, segment, proposal_url, phone
        FROM sites
        WHERE id = $1
    `
	row := r.DB.QueryRow(query, id)

	var s model.Site
	if err := row.Scan(&s.ID, &s.CompanyName, &s.ContactName, &s.City, &s.Segment, &s.ProposalURL, &s.Phone); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &s, nil
}

// ListAll fetches all sites (used by the admin dashboard listing)
func (r *SiteRepository) ListAll() ([]model.Site, error) {
	query := `
        SELECT id, company_name, contact_name, city, segment, proposal_url, phone
        FROM sites
    `
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sites := []model.Site{}
	for rows.Next() {
		var s model.Site
		if err := rows.Scan(&s.ID, &s.CompanyName, &s.ContactName, &s.City, &s.Segment, &s.ProposalURL, &s.Phone); err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, nil
}

var _ SiteRepositoryInterface = (*SiteRepository)(nil)
