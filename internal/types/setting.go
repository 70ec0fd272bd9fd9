package types

import "time"

// Setting is a string-keyed runtime configuration cell: retrieval cascade
// overrides, the system prompt, feature toggles.
type Setting struct {
	Key         string    `json:"key" gorm:"type:varchar(128);primaryKey"`
	Value       string    `json:"value" gorm:"type:text;not null"`
	Description string    `json:"description" gorm:"type:text"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Setting) TableName() string { return "settings" }

// Well-known setting keys used by the retrieval engine and chat ingestor.
const (
	SettingSystemPrompt       = "system_prompt"
	SettingReconcileInterval  = "reconcile_interval_seconds"
	SettingMaxPerGroupMeeting = "max_per_group_meeting"
)
