// internal/model/assignment.go
package model

import "time"

// Assignment binds a script to one site (lead) together with the variable
// values edited for that recipient and the messages already marked sent.
type Assignment struct {
	ID           string            `db:"id" json:"id"`
	SiteID       string            `db:"site_id" json:"site_id"`
	ScriptID     string            `db:"script_id" json:"script_id"`
	CustomValues map[string]string `db:"custom_values" json:"custom_values"`
	SentMessages []SentMessage     `json:"sent_messages"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time        `db:"updated_at" json:"updated_at,omitempty"`
}

type SentMessage struct {
	MessageID string    `db:"message_id" json:"message_id"`
	SentAt    time.Time `db:"sent_at" json:"sent_at"`
}

// SentSet indexes sent messages by id for the preview renderer.
func (a *Assignment) SentSet() map[string]time.Time {
	set := make(map[string]time.Time, len(a.SentMessages))
	for _, s := range a.SentMessages {
		set[s.MessageID] = s.SentAt
	}
	return set
}
