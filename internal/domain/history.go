package domain

import "time"

// HistoryEntry is an immutable snapshot of a scene taken after a
// committed mutation.
type HistoryEntry struct {
	Blocks      []Block   `json:"blocks"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}
