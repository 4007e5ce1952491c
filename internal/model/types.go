// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	EasyMode    bool
	Shuffle     bool
	GhostDelay  time.Duration
	GhostWindow int
	FlashDelay  time.Duration
}

// LogConfig defines where and how much the application logs.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Card is a passage to memorize.
type Card struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Deck is an ordered stack of cards studied in sequence.
type Deck struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CardIDs   []string  `json:"cardIds"`
	CreatedAt time.Time `json:"createdAt"`
}

// Preferences holds user choices remembered between runs.
type Preferences struct {
	EasyMode   bool   `json:"easyMode"`
	LastCardID string `json:"lastCardId"`
}

// TimingRecord is one completed attempt in a personal-best list.
type TimingRecord struct {
	// Time is the completion time in whole seconds, penalties included.
	Time             int   `json:"time"`
	Date             int64 `json:"date"`
	EasyMode         bool  `json:"easyMode"`
	ReferenceExposed bool  `json:"referenceExposed"`
	GhostTextUsed    bool  `json:"ghostTextUsed"`
}

// DateTime returns the record date as a time value.
func (r TimingRecord) DateTime() time.Time {
	return time.UnixMilli(r.Date)
}
