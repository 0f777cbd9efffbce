package models

import "time"

// Setting is a key/value row for runtime-tunable values such as the per-day
// subscription prices.
type Setting struct {
	Key   string `gorm:"primary_key;size:100" json:"key"`
	Value string `gorm:"size:255;not null" json:"value"`

	UpdatedAt time.Time `json:"updated_at"`
}
