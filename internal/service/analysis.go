package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"codereview/internal/config"
	"codereview/internal/model"
	"codereview/internal/repository"
	"codereview/internal/storage"
)

// Upload types accepted by POST /api/upload.
const (
	UploadSingle = "single"
	UploadFolder = "folder"
)

const sharePrefix = "share-"

// UploadFile is one file of a multipart upload.
type UploadFile struct {
	Name        string
	Size        int64
	ContentType string
	Content     io.Reader
}

// Dispatcher hands a session to asynchronous processing.
type Dispatcher interface {
	Submit(sessionID string) error
}

// AnalysisService defines the use cases behind the HTTP API.
type AnalysisService interface {
	// Upload validates the files, stores them and queues a new session for processing.
	// Nothing is created when validation fails.
	Upload(ctx context.Context, uploadType string, files []UploadFile) (*model.AnalysisSession, error)

	// Status returns the polling view of a session.
	Status(ctx context.Context, sessionID string) (*model.SessionStatusView, error)

	// Results returns the per-file results summed across a completed session.
	Results(ctx context.Context, sessionID string) (*model.AnalysisResult, error)

	// TriggerProcessing marks the file stored under objectKey as processing.
	TriggerProcessing(ctx context.Context, sessionID, objectKey string) (*model.FileAnalysis, error)

	// Reanalyze copies a session's files into a fresh session and queues it.
	Reanalyze(ctx context.Context, sessionID string) (*model.AnalysisSession, error)

	// Share returns a share id for a completed session.
	Share(ctx context.Context, sessionID string) (string, error)

	// SharedResults resolves a share id and returns that session's results.
	SharedResults(ctx context.Context, shareID string) (*model.AnalysisResult, error)
}

type analysisService struct {
	store    repository.Store
	objects  storage.Storage
	dispatch Dispatcher
	upload   config.UploadConfig
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewAnalysisService constructs a new AnalysisService.
func NewAnalysisService(store repository.Store, objects storage.Storage, dispatch Dispatcher, upload config.UploadConfig, log logrus.FieldLogger) AnalysisService {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &analysisService{
		store:    store,
		objects:  objects,
		dispatch: dispatch,
		upload:   upload,
		log:      log.WithField("component", "analysis_service"),
		now:      time.Now,
	}
}

func (s *analysisService) Upload(ctx context.Context, uploadType string, files []UploadFile) (*model.AnalysisSession, error) {
	if err := s.validate(uploadType, files); err != nil {
		return nil, err
	}
	sess, err := s.startSession(ctx, files)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"event":       "upload_accepted",
		"session_id":  sess.ID,
		"upload_type": uploadType,
		"files":       len(files),
	}).Info("files uploaded")
	return sess, nil
}

func (s *analysisService) validate(uploadType string, files []UploadFile) error {
	if uploadType != UploadSingle && uploadType != UploadFolder {
		return invalid("uploadType must be one of: single, folder")
	}
	if len(files) == 0 {
		return invalid("No files uploaded")
	}
	if len(files) > s.upload.MaxFiles {
		return invalid(fmt.Sprintf("Too many files: %d uploaded, at most %d allowed", len(files), s.upload.MaxFiles))
	}

	var rejected []string
	for _, f := range files {
		if f.Name == "" {
			return invalid("Every file needs a name")
		}
		if f.Size > s.upload.MaxFileSize {
			return invalid(fmt.Sprintf("File too large: %s is %s, limit is %s",
				f.Name, humanize.IBytes(uint64(f.Size)), humanize.IBytes(uint64(s.upload.MaxFileSize))))
		}
		if !s.allowed(f.Name) {
			rejected = append(rejected, f.Name)
		}
	}
	if len(rejected) > 0 {
		return invalid(fmt.Sprintf("Invalid file types found: %s. Only code files (%s) are allowed.",
			strings.Join(rejected, ", "), strings.Join(s.upload.AllowedExtensions, ", ")))
	}
	return nil
}

func (s *analysisService) allowed(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range s.upload.AllowedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// startSession creates a pending session, stores every file and submits the
// session. On failure the stored objects are removed and the session is
// marked error.
func (s *analysisService) startSession(ctx context.Context, files []UploadFile) (*model.AnalysisSession, error) {
	sess, err := s.store.CreateSession(ctx, repository.NewSession{
		Status:     model.SessionPending,
		TotalFiles: len(files),
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	var stored []string
	used := make(map[string]bool, len(files))
	for _, f := range files {
		key := s.objectKey(sess.ID, f.Name, used)
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}

		info, err := s.objects.Put(ctx, key, f.Content, storage.PutObjectOptions{
			Size:        f.Size,
			ContentType: ct,
			Metadata: map[string]string{
				"session-id":        sess.ID,
				"original-filename": f.Name,
				"upload-time":       s.now().UTC().Format(time.RFC3339),
			},
		})
		if err != nil {
			return nil, s.abort(ctx, sess.ID, stored, fmt.Errorf("upload to storage: %w", err))
		}
		stored = append(stored, key)

		size := info.Size
		if size <= 0 {
			size = f.Size
		}
		if _, err := s.store.CreateFile(ctx, repository.NewFile{
			SessionID: sess.ID,
			FileName:  f.Name,
			FileSize:  size,
			FileType:  ct,
			ObjectKey: key,
			Status:    model.FileUploading,
		}); err != nil {
			return nil, s.abort(ctx, sess.ID, stored, fmt.Errorf("create file record: %w", err))
		}
	}

	if err := s.dispatch.Submit(sess.ID); err != nil {
		return nil, s.abort(ctx, sess.ID, stored, fmt.Errorf("%w: %v", ErrQueueFull, err))
	}
	return sess, nil
}

// objectKey builds sessions/{sessionID}/{unixMillis}-{name}, bumping the
// timestamp when two files of one upload would collide.
func (s *analysisService) objectKey(sessionID, name string, used map[string]bool) string {
	ms := s.now().UnixMilli()
	for {
		key := "sessions/" + sessionID + "/" + strconv.FormatInt(ms, 10) + "-" + name
		if !used[key] {
			used[key] = true
			return key
		}
		ms++
	}
}

func (s *analysisService) abort(ctx context.Context, sessionID string, keys []string, cause error) error {
	ctx = context.WithoutCancel(ctx)
	for _, k := range keys {
		if err := s.objects.Delete(ctx, k); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{"event": "rollback_failed", "key": k}).Warn("failed to delete stored object")
		}
	}
	s.markError(ctx, sessionID)
	return cause
}

func (s *analysisService) markError(ctx context.Context, sessionID string) {
	if _, err := s.store.UpdateSession(context.WithoutCancel(ctx), sessionID, repository.SessionStatusUpdate(model.SessionError)); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"event": "mark_error_failed", "session_id": sessionID}).Error("failed to mark session as error")
	}
}

func (s *analysisService) getSession(ctx context.Context, id string) (*model.AnalysisSession, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

func (s *analysisService) Status(ctx context.Context, sessionID string) (*model.SessionStatusView, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	files, err := s.store.ListFilesBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	view := AggregateStatus(sess, files)
	return &view, nil
}

func (s *analysisService) Results(ctx context.Context, sessionID string) (*model.AnalysisResult, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != model.SessionCompleted {
		return nil, ErrNotCompleted
	}
	files, err := s.store.ListFilesBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return aggregateResults(files), nil
}

func (s *analysisService) TriggerProcessing(ctx context.Context, sessionID, objectKey string) (*model.FileAnalysis, error) {
	if sessionID == "" || objectKey == "" {
		return nil, ErrIDRequired
	}
	f, err := s.store.GetFileByObjectKey(ctx, objectKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	if f.SessionID != sessionID {
		return nil, ErrFileNotFound
	}

	updated, err := s.store.UpdateFile(ctx, f.ID, repository.FileStatusUpdate(model.FileProcessing))
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return updated, nil
}

func (s *analysisService) Reanalyze(ctx context.Context, sessionID string) (*model.AnalysisSession, error) {
	if _, err := s.getSession(ctx, sessionID); err != nil {
		return nil, err
	}
	files, err := s.store.ListFilesBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	uploads := make([]UploadFile, len(files))
	for i, f := range files {
		data, _, err := storage.ReadAll(ctx, s.objects, f.ObjectKey)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.ObjectKey, err)
		}
		uploads[i] = UploadFile{
			Name:        f.FileName,
			Size:        int64(len(data)),
			ContentType: f.FileType,
			Content:     bytes.NewReader(data),
		}
	}

	sess, err := s.startSession(ctx, uploads)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"event":      "reanalysis_started",
		"session_id": sess.ID,
		"source_id":  sessionID,
	}).Info("re-analysis started")
	return sess, nil
}

func (s *analysisService) Share(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess.Status != model.SessionCompleted {
		return "", ErrNotCompleted
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return sharePrefix + sess.ID + "-" + suffix, nil
}

func (s *analysisService) SharedResults(ctx context.Context, shareID string) (*model.AnalysisResult, error) {
	sessionID, ok := ParseShareID(shareID)
	if !ok {
		return nil, ErrNotFound
	}
	return s.Results(ctx, sessionID)
}

// ParseShareID extracts the session id from share-{sessionID}-{8 hex}.
func ParseShareID(shareID string) (string, bool) {
	rest, ok := strings.CutPrefix(shareID, sharePrefix)
	if !ok {
		return "", false
	}
	i := strings.LastIndexByte(rest, '-')
	if i <= 0 {
		return "", false
	}
	suffix := rest[i+1:]
	if len(suffix) != 8 {
		return "", false
	}
	if _, err := hex.DecodeString(suffix); err != nil {
		return "", false
	}
	return rest[:i], true
}
