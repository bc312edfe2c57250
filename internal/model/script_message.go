// internal/model/script_message.go
package model

import "time"

type MessageType string

const (
	MessageTypeText        MessageType = "text"
	MessageTypeImage       MessageType = "image"
	MessageTypeConditional MessageType = "conditional"
)

type Condition string

const (
	ConditionAfterPositiveResponse Condition = "after_positive_response"
	ConditionAfterNegativeResponse Condition = "after_negative_response"
	ConditionAfterNoResponse       Condition = "after_no_response"
)

// ScriptMessage is one node in a script's flow. ParentID is nil for root
// messages; siblings are ordered by Order ascending. PositionX/PositionY are
// persisted mind-map coordinates, zero meaning "not yet laid out".
type ScriptMessage struct {
	ID        string      `db:"id" json:"id"`
	ScriptID  string      `db:"script_id" json:"script_id"`
	ParentID  *string     `db:"parent_id" json:"parent_id,omitempty"`
	Order     int         `db:"sort_order" json:"order"`
	Type      MessageType `db:"type" json:"type"`
	Content   string      `db:"content" json:"content"`
	Condition Condition   `db:"condition" json:"condition,omitempty"`
	ImageURL  string      `db:"image_url" json:"image_url,omitempty"`
	PositionX float64     `db:"position_x" json:"position_x"`
	PositionY float64     `db:"position_y" json:"position_y"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

// IsRoot reports whether the message has no parent.
func (m *ScriptMessage) IsRoot() bool {
	return m.ParentID == nil || *m.ParentID == ""
}
