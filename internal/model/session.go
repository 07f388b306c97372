package model

import "time"

// SessionStatus is the lifecycle state of an AnalysisSession.
type SessionStatus string

const (
	SessionPending    SessionStatus = "pending"
	SessionProcessing SessionStatus = "processing"
	SessionCompleted  SessionStatus = "completed"
	SessionError      SessionStatus = "error"
)

// Terminal reports whether no further transitions are allowed.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionError
}

// AnalysisSession is one upload batch of related files tracked together.
type AnalysisSession struct {
	ID             string        `json:"id"`
	Status         SessionStatus `json:"status"`
	TotalFiles     int           `json:"totalFiles"`
	ProcessedFiles int           `json:"processedFiles"`
	CreatedAt      time.Time     `json:"createdAt"`
	CompletedAt    *time.Time    `json:"completedAt"`
}
