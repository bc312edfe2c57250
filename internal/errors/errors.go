// internal/errors/errors.go
package appErrors

import "fmt"

// ErrScriptNotFound is a sentinel error
type ErrScriptNotFound struct {
	ScriptID string
}

func (e *ErrScriptNotFound) Error() string {
	return fmt.Sprintf("script with ID %s not found", e.ScriptID)
}

// Helper constructor
func NewScriptNotFound(id string) error {
	return &ErrScriptNotFound{ScriptID: id}
}

type ErrSiteNotFound struct {
	SiteID string
}

func (e *ErrSiteNotFound) Error() string {
	return fmt.Sprintf("site with ID %s not found", e.SiteID)
}

func NewSiteNotFound(id string) error {
	return &ErrSiteNotFound{SiteID: id}
}

type ErrMessageNotFound struct {
	MessageID string
}

func (e *ErrMessageNotFound) Error() string {
	return fmt.Sprintf("message with ID %s not found", e.MessageID)
}

func NewMessageNotFound(id string) error {
	return &ErrMessageNotFound{MessageID: id}
}

// ErrAssignmentNotFound means the site has no script assigned yet.
type ErrAssignmentNotFound struct {
	SiteID string
}

func (e *ErrAssignmentNotFound) Error() string {
	return fmt.Sprintf("no assignment for site %s", e.SiteID)
}

func NewAssignmentNotFound(siteID string) error {
	return &ErrAssignmentNotFound{SiteID: siteID}
}
