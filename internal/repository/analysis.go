package repository

import (
	"context"
	"fmt"
	"time"

	"codereview/internal/model"
)

// Store owns every AnalysisSession and FileAnalysis record.
// Implementations must be safe for concurrent use and must hand out copies,
// never references to their internal state.
type Store interface {
	// CreateSession stores a new session. ID and CreatedAt are generated by the store.
	CreateSession(ctx context.Context, s NewSession) (*model.AnalysisSession, error)

	// GetSession returns a session by ID or ErrNotFound.
	GetSession(ctx context.Context, id string) (*model.AnalysisSession, error)

	// UpdateSession merges the non-nil fields of u into the session.
	UpdateSession(ctx context.Context, id string, u SessionUpdate) (*model.AnalysisSession, error)

	// CreateFile stores a new file record. ID and CreatedAt are generated by the store.
	CreateFile(ctx context.Context, f NewFile) (*model.FileAnalysis, error)

	// GetFile returns a file by ID or ErrNotFound.
	GetFile(ctx context.Context, id string) (*model.FileAnalysis, error)

	// ListFilesBySession returns the files of a session in insertion order.
	// An unknown session yields an empty list.
	ListFilesBySession(ctx context.Context, sessionID string) ([]model.FileAnalysis, error)

	// GetFileByObjectKey returns the unique file stored under key or ErrNotFound.
	GetFileByObjectKey(ctx context.Context, key string) (*model.FileAnalysis, error)

	// UpdateFile merges the non-nil fields of u into the file.
	UpdateFile(ctx context.Context, id string, u FileUpdate) (*model.FileAnalysis, error)

	// UpdateFileByObjectKey is UpdateFile addressed by object key.
	UpdateFileByObjectKey(ctx context.Context, key string, u FileUpdate) (*model.FileAnalysis, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// NewSession carries the caller-provided fields of a session.
type NewSession struct {
	Status         model.SessionStatus
	TotalFiles     int
	ProcessedFiles int
}

// NewFile carries the caller-provided fields of a file record.
type NewFile struct {
	SessionID string
	FileName  string
	FileSize  int64
	FileType  string
	ObjectKey string
	Status    model.FileStatus
}

// SessionUpdate is a shallow patch; nil fields are left untouched.
type SessionUpdate struct {
	Status         *model.SessionStatus
	TotalFiles     *int
	ProcessedFiles *int
}

// FileUpdate is a shallow patch; nil fields are left untouched.
type FileUpdate struct {
	Status         *model.FileStatus
	AnalysisResult *model.AnalysisResult
}

// SessionStatusUpdate is shorthand for a status-only patch.
func SessionStatusUpdate(s model.SessionStatus) SessionUpdate {
	return SessionUpdate{Status: &s}
}

// FileStatusUpdate is shorthand for a status-only patch.
func FileStatusUpdate(s model.FileStatus) FileUpdate {
	return FileUpdate{Status: &s}
}

// BuildSession fills in generated fields and defaults for a new session.
func BuildSession(id string, in NewSession, now time.Time) *model.AnalysisSession {
	status := in.Status
	if status == "" {
		status = model.SessionPending
	}
	return &model.AnalysisSession{
		ID:             id,
		Status:         status,
		TotalFiles:     in.TotalFiles,
		ProcessedFiles: in.ProcessedFiles,
		CreatedAt:      now,
	}
}

// BuildFile fills in generated fields and defaults for a new file record.
func BuildFile(id string, in NewFile, now time.Time) *model.FileAnalysis {
	status := in.Status
	if status == "" {
		status = model.FileUploading
	}
	return &model.FileAnalysis{
		ID:        id,
		SessionID: in.SessionID,
		FileName:  in.FileName,
		FileSize:  in.FileSize,
		FileType:  in.FileType,
		ObjectKey: in.ObjectKey,
		Status:    status,
		CreatedAt: now,
	}
}

// ApplySessionUpdate merges u into s in place. CompletedAt is stamped with now
// the first time the session lands in a terminal status and is never changed again.
func ApplySessionUpdate(s *model.AnalysisSession, u SessionUpdate, now time.Time) error {
	if u.Status != nil && *u.Status != s.Status && s.Status.Terminal() {
		return fmt.Errorf("session %s: %s -> %s: %w", s.ID, s.Status, *u.Status, ErrInvalidTransition)
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
	if u.TotalFiles != nil {
		s.TotalFiles = *u.TotalFiles
	}
	if u.ProcessedFiles != nil {
		s.ProcessedFiles = *u.ProcessedFiles
	}
	if s.Status.Terminal() && s.CompletedAt == nil {
		t := now
		s.CompletedAt = &t
	}
	return nil
}

// ApplyFileUpdate merges u into f in place with the same completedAt rule as
// sessions. A result may only be attached to a completed file.
func ApplyFileUpdate(f *model.FileAnalysis, u FileUpdate, now time.Time) error {
	if u.Status != nil && *u.Status != f.Status && f.Status.Terminal() {
		return fmt.Errorf("file %s: %s -> %s: %w", f.ID, f.Status, *u.Status, ErrInvalidTransition)
	}
	status := f.Status
	if u.Status != nil {
		status = *u.Status
	}
	result := f.AnalysisResult
	if u.AnalysisResult != nil {
		result = CloneResult(u.AnalysisResult)
	}
	if result != nil && status != model.FileCompleted {
		return fmt.Errorf("file %s: result attached while %s: %w", f.ID, status, ErrInvalidTransition)
	}
	f.Status = status
	f.AnalysisResult = result
	if f.Status.Terminal() && f.CompletedAt == nil {
		t := now
		f.CompletedAt = &t
	}
	return nil
}

// CloneSession returns a copy that shares no memory with s.
func CloneSession(s *model.AnalysisSession) *model.AnalysisSession {
	out := *s
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

// CloneFile returns a copy that shares no memory with f.
func CloneFile(f *model.FileAnalysis) *model.FileAnalysis {
	out := *f
	if f.CompletedAt != nil {
		t := *f.CompletedAt
		out.CompletedAt = &t
	}
	out.AnalysisResult = CloneResult(f.AnalysisResult)
	return &out
}

// CloneResult deep-copies a result, including its issue list.
func CloneResult(r *model.AnalysisResult) *model.AnalysisResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Issues = make([]model.Issue, len(r.Issues))
	copy(out.Issues, r.Issues)
	return &out
}
