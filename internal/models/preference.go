package models

import "time"

// PreferenceSource records where a categorization instruction came from.
type PreferenceSource string

const (
	PreferenceSourceUser    PreferenceSource = "user"
	PreferenceSourceLearned PreferenceSource = "learned"
)

// Preference is a durable natural-language categorization instruction.
// Learned preferences are keyed by merchant: upserting a correction for a
// merchant replaces any earlier learned entry, so at most one learned
// preference exists per merchant.
type Preference struct {
	ID          string           `json:"id"`
	Merchant    string           `json:"merchant"`
	Instruction string           `json:"instruction"`
	Source      PreferenceSource `json:"source"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}
