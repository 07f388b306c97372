package model

// StageStatus is the composite pipeline view derived from a session and its files.
type StageStatus struct {
	UploadDone   bool
	DispatchDone bool
	ComputeDone  bool
	ReviewDone   bool
}

// SessionStatusView is what a polling client sees for one session.
type SessionStatusView struct {
	Status         SessionStatus
	TotalFiles     int
	ProcessedFiles int
	TotalSize      int64
	Stages         StageStatus
	// UploadTime is a placeholder duration in seconds, nil until upload is done.
	UploadTime *float64
}
