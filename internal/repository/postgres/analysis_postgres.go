package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"codereview/internal/model"
	"codereview/internal/repository"
)

// AnalysisPostgres is a PostgreSQL implementation of repository.Store.
// Updates lock the row with SELECT ... FOR UPDATE and apply the shared merge
// rules in Go, so both backends stamp completedAt the same way.
type AnalysisPostgres struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

// NewAnalysisPostgres creates a new AnalysisPostgres store.
func NewAnalysisPostgres(db *sql.DB) *AnalysisPostgres {
	return &AnalysisPostgres{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

var _ repository.Store = (*AnalysisPostgres)(nil)

const sessionColumns = `id, status, total_files, processed_files, created_at, completed_at`

const fileColumns = `id, session_id, file_name, file_size, file_type, object_key, status, analysis_result, created_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*model.AnalysisSession, error) {
	var (
		s         model.AnalysisSession
		status    string
		completed sql.NullTime
	)
	if err := row.Scan(&s.ID, &status, &s.TotalFiles, &s.ProcessedFiles, &s.CreatedAt, &completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	s.Status = model.SessionStatus(status)
	if completed.Valid {
		t := completed.Time
		s.CompletedAt = &t
	}
	return &s, nil
}

func scanFile(row rowScanner) (*model.FileAnalysis, error) {
	var (
		f         model.FileAnalysis
		status    string
		result    []byte
		completed sql.NullTime
	)
	if err := row.Scan(&f.ID, &f.SessionID, &f.FileName, &f.FileSize, &f.FileType, &f.ObjectKey,
		&status, &result, &f.CreatedAt, &completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	f.Status = model.FileStatus(status)
	if len(result) > 0 {
		var r model.AnalysisResult
		if err := json.Unmarshal(result, &r); err != nil {
			return nil, fmt.Errorf("decode analysis_result of %s: %w", f.ID, err)
		}
		f.AnalysisResult = &r
	}
	if completed.Valid {
		t := completed.Time
		f.CompletedAt = &t
	}
	return &f, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// encodeResult yields a NULL parameter for a nil result.
func encodeResult(r *model.AnalysisResult) (any, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// CreateSession inserts a new session row and returns the stored record.
func (r *AnalysisPostgres) CreateSession(ctx context.Context, in repository.NewSession) (*model.AnalysisSession, error) {
	s := repository.BuildSession(r.newID(), in, r.now())
	const q = `
		INSERT INTO analysis_sessions (id, status, total_files, processed_files, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRowContext(ctx, q, s.ID, string(s.Status), s.TotalFiles, s.ProcessedFiles, s.CreatedAt))
}

// GetSession fetches a single session by its ID.
func (r *AnalysisPostgres) GetSession(ctx context.Context, id string) (*model.AnalysisSession, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	const q = `SELECT ` + sessionColumns + ` FROM analysis_sessions WHERE id = $1`
	return scanSession(r.db.QueryRowContext(ctx, q, id))
}

// UpdateSession applies a patch under a row lock.
func (r *AnalysisPostgres) UpdateSession(ctx context.Context, id string, u repository.SessionUpdate) (*model.AnalysisSession, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	const qSelect = `SELECT ` + sessionColumns + ` FROM analysis_sessions WHERE id = $1 FOR UPDATE`
	s, err := scanSession(tx.QueryRowContext(ctx, qSelect, id))
	if err != nil {
		return nil, err
	}
	if err := repository.ApplySessionUpdate(s, u, r.now()); err != nil {
		return nil, err
	}

	const qUpdate = `
		UPDATE analysis_sessions
		SET status = $2, total_files = $3, processed_files = $4, completed_at = $5
		WHERE id = $1`
	if _, err := tx.ExecContext(ctx, qUpdate, s.ID, string(s.Status), s.TotalFiles, s.ProcessedFiles, nullTime(s.CompletedAt)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateFile inserts a new file row and returns the stored record.
func (r *AnalysisPostgres) CreateFile(ctx context.Context, in repository.NewFile) (*model.FileAnalysis, error) {
	f := repository.BuildFile(r.newID(), in, r.now())
	const q = `
		INSERT INTO file_analyses (id, session_id, file_name, file_size, file_type, object_key, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + fileColumns
	return scanFile(r.db.QueryRowContext(ctx, q,
		f.ID,
		f.SessionID,
		f.FileName,
		f.FileSize,
		f.FileType,
		f.ObjectKey,
		string(f.Status),
		f.CreatedAt,
	))
}

// GetFile fetches a single file by its ID.
func (r *AnalysisPostgres) GetFile(ctx context.Context, id string) (*model.FileAnalysis, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	const q = `SELECT ` + fileColumns + ` FROM file_analyses WHERE id = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// ListFilesBySession returns the files of a session in insertion order.
func (r *AnalysisPostgres) ListFilesBySession(ctx context.Context, sessionID string) ([]model.FileAnalysis, error) {
	items := make([]model.FileAnalysis, 0)
	if _, err := uuid.Parse(sessionID); err != nil {
		return items, nil
	}
	const q = `SELECT ` + fileColumns + ` FROM file_analyses WHERE session_id = $1 ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetFileByObjectKey fetches the file stored under key.
func (r *AnalysisPostgres) GetFileByObjectKey(ctx context.Context, key string) (*model.FileAnalysis, error) {
	const q = `SELECT ` + fileColumns + ` FROM file_analyses WHERE object_key = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, key))
}

// UpdateFile applies a patch under a row lock.
func (r *AnalysisPostgres) UpdateFile(ctx context.Context, id string, u repository.FileUpdate) (*model.FileAnalysis, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	return r.updateFile(ctx, `id = $1`, id, u)
}

// UpdateFileByObjectKey applies a patch to the file stored under key.
func (r *AnalysisPostgres) UpdateFileByObjectKey(ctx context.Context, key string, u repository.FileUpdate) (*model.FileAnalysis, error) {
	return r.updateFile(ctx, `object_key = $1`, key, u)
}

func (r *AnalysisPostgres) updateFile(ctx context.Context, where string, arg string, u repository.FileUpdate) (*model.FileAnalysis, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	qSelect := `SELECT ` + fileColumns + ` FROM file_analyses WHERE ` + where + ` FOR UPDATE`
	f, err := scanFile(tx.QueryRowContext(ctx, qSelect, arg))
	if err != nil {
		return nil, err
	}
	if err := repository.ApplyFileUpdate(f, u, r.now()); err != nil {
		return nil, err
	}
	result, err := encodeResult(f.AnalysisResult)
	if err != nil {
		return nil, fmt.Errorf("encode analysis_result: %w", err)
	}

	const qUpdate = `
		UPDATE file_analyses
		SET status = $2, analysis_result = $3, completed_at = $4
		WHERE id = $1`
	if _, err := tx.ExecContext(ctx, qUpdate, f.ID, string(f.Status), result, nullTime(f.CompletedAt)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return f, nil
}

// Ping checks database connectivity.
func (r *AnalysisPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
