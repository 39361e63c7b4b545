package models

import "time"

// Source tags which generation path produced a trend
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
	SourceManual   Source = "manual"
)

// Valid reports whether s is a known provenance tag
func (s Source) Valid() bool {
	switch s {
	case SourceLLM, SourceFallback, SourceManual:
		return true
	}
	return false
}

// CandidateTrend is an unvalidated trend proposed by research or supplied
// by a client for bulk ingestion
type CandidateTrend struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Category string `json:"category"`
	Source   Source `json:"source,omitempty"`
}

// Trend represents a persisted trend record
type Trend struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	Summary   string    `json:"summary" bson:"summary"`
	Category  string    `json:"category" bson:"category"`
	Source    Source    `json:"source" bson:"source"`
	IsHidden  bool      `json:"is_hidden" bson:"is_hidden"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
