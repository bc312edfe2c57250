// internal/model/site.go
package model

// Site is the lead profile whose fields seed the default template variables.
type Site struct {
	ID          string `db:"id" json:"id"`
	CompanyName string `db:"company_name" json:"company_name"`
	ContactName string `db:"contact_name" json:"contact_name"`
	City        string `db:"city" json:"city"`
	Segment     string `db:"segment" json:"segment"`
	ProposalURL string `db:"proposal_url" json:"proposal_url"`
	Phone       string `db:"phone" json:"phone"`
}
