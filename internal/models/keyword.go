package models

import (
	"time"
)

// Keyword is a trending search term awaiting conversion into a post
type Keyword struct {
	ID        string     `json:"id" db:"id"`
	Keyword   string     `json:"keyword" db:"keyword"`
	Used      bool       `json:"used" db:"used"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UsedAt    *time.Time `json:"usedAt,omitempty" db:"used_at"`
}

// CollectResult is the outcome of one trend collection pass
type CollectResult struct {
	RunID    string `json:"runId,omitempty"`
	Fetched  int    `json:"count"`
	Inserted int    `json:"inserted"`
}

// MaxKeywordLength bounds an imported keyword, in characters
const MaxKeywordLength = 100

// KeywordRecord is one line of an NDJSON keyword import
type KeywordRecord struct {
	Keyword string `json:"keyword"`
}

// ImportResult is the outcome of one keyword file import
type ImportResult struct {
	RunID      string `json:"runId"`
	Total      int    `json:"total"`
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
	Failed     int    `json:"failed"`
	DurationMs int64  `json:"durationMs"`
}
