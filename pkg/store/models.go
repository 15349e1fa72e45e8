package store

import "time"

// SessionEntryModel is one persisted session key. Scope lets several
// workstations or profiles share a table without clobbering each other.
type SessionEntryModel struct {
	Scope     string `gorm:"primaryKey"`
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (SessionEntryModel) TableName() string {
	return "client_session_entries"
}
