package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"codereview/internal/analysis"
	"codereview/internal/config"
	"codereview/internal/model"
	"codereview/internal/repository"
	"codereview/internal/repository/memory"
	repoMocks "codereview/internal/repository/mocks"
	"codereview/internal/storage"
	storeMocks "codereview/internal/storage/mocks"
)

type recordingDispatcher struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (d *recordingDispatcher) Submit(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.ids = append(d.ids, id)
	return nil
}

var testUpload = config.UploadConfig{
	MaxFiles:          6,
	MaxFileSize:       10 * 1024 * 1024,
	AllowedExtensions: config.DefaultAllowedExtensions,
}

func file(name, body string) UploadFile {
	return UploadFile{Name: name, Size: int64(len(body)), ContentType: "text/plain", Content: strings.NewReader(body)}
}

func newTestService(fx *fixture, d Dispatcher) AnalysisService {
	return NewAnalysisService(fx.store, fx.objects, d, testUpload, nil)
}

// complete runs the demo processor over a session.
func complete(t *testing.T, fx *fixture, sessionID string) {
	t.Helper()
	p := NewProcessor(fx.store, fx.objects, analysis.NewDemo(nil))
	require.NoError(t, p.ProcessSession(context.Background(), sessionID))
}

func TestAnalysisService_Upload(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	d := &recordingDispatcher{}
	svc := newTestService(fx, d)

	sess, err := svc.Upload(ctx, UploadFolder, []UploadFile{file("a.ts", "let a = 1"), file("a.ts", "let b = 2"), file("main.GO", "package main")})
	require.NoError(t, err)

	assert.Equal(t, model.SessionPending, sess.Status)
	assert.Equal(t, 3, sess.TotalFiles)
	assert.Equal(t, []string{sess.ID}, d.ids)

	files, err := fx.store.ListFilesBySession(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, files, 3)

	keys := map[string]bool{}
	for _, f := range files {
		assert.Equal(t, model.FileUploading, f.Status)
		assert.True(t, strings.HasPrefix(f.ObjectKey, "sessions/"+sess.ID+"/"))
		assert.True(t, strings.HasSuffix(f.ObjectKey, "-"+f.FileName))
		keys[f.ObjectKey] = true

		data, info, err := storage.ReadAll(ctx, fx.objects, f.ObjectKey)
		require.NoError(t, err)
		assert.Equal(t, f.FileSize, int64(len(data)))
		assert.Equal(t, sess.ID, info.Metadata["session-id"])
		assert.Equal(t, f.FileName, info.Metadata["original-filename"])
	}
	assert.Len(t, keys, 3, "duplicate names get distinct object keys")
}

func TestAnalysisService_UploadValidation(t *testing.T) {
	ctx := context.Background()

	big := UploadFile{Name: "big.js", Size: testUpload.MaxFileSize + 1, Content: strings.NewReader("")}
	many := make([]UploadFile, 7)
	for i := range many {
		many[i] = file("f.js", "x")
	}

	tests := []struct {
		name       string
		uploadType string
		files      []UploadFile
		wantMsg    string
	}{
		{name: "bad upload type", uploadType: "zip", files: []UploadFile{file("a.js", "")}, wantMsg: "uploadType"},
		{name: "no files", uploadType: UploadSingle, wantMsg: "No files uploaded"},
		{name: "too many files", uploadType: UploadFolder, files: many, wantMsg: "Too many files"},
		{name: "too large", uploadType: UploadSingle, files: []UploadFile{big}, wantMsg: "File too large: big.js"},
		{name: "disallowed extension", uploadType: UploadSingle, files: []UploadFile{file("a.js", ""), file("virus.exe", "")}, wantMsg: "Invalid file types found: virus.exe."},
		{name: "empty name", uploadType: UploadSingle, files: []UploadFile{file("", "")}, wantMsg: "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(repoMocks.MockStore)
			mObjects := new(storeMocks.MockStorage)
			d := &recordingDispatcher{}
			svc := NewAnalysisService(mStore, mObjects, d, testUpload, nil)

			sess, err := svc.Upload(ctx, tt.uploadType, tt.files)
			assert.Nil(t, sess)
			assert.ErrorIs(t, err, ErrValidation)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Message, tt.wantMsg)

			// nothing touched: no session, no objects, no dispatch
			mStore.AssertExpectations(t)
			mObjects.AssertExpectations(t)
			assert.Empty(t, d.ids)
		})
	}
}

func TestAnalysisService_UploadStorageFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	mObjects := new(storeMocks.MockStorage)
	d := &recordingDispatcher{}
	svc := NewAnalysisService(fx.store, mObjects, d, testUpload, nil)

	var firstKey string
	mObjects.On("Put", mock.Anything, mock.MatchedBy(func(k string) bool { return strings.HasSuffix(k, "-a.py") }), mock.Anything, mock.Anything).
		Return(func(_ context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
			firstKey = key
			return storage.ObjectInfo{Key: key, Size: opt.Size}
		}, nil).Once()
	mObjects.On("Put", mock.Anything, mock.MatchedBy(func(k string) bool { return strings.HasSuffix(k, "-b.py") }), mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, errors.New("bucket gone")).Once()
	mObjects.On("Delete", mock.Anything, mock.MatchedBy(func(k string) bool { return k == firstKey })).Return(nil).Once()

	sess, err := svc.Upload(ctx, UploadFolder, []UploadFile{file("a.py", "a"), file("b.py", "b")})
	assert.Nil(t, sess)
	assert.EqualError(t, err, "upload to storage: bucket gone")
	mObjects.AssertExpectations(t)
	assert.Empty(t, d.ids)
}

func TestAnalysisService_UploadStoreFailure(t *testing.T) {
	ctx := context.Background()
	mStore := new(repoMocks.MockStore)
	d := &recordingDispatcher{}
	fx := newFixture()
	svc := NewAnalysisService(mStore, fx.objects, d, testUpload, nil)

	mStore.On("CreateSession", ctx, repository.NewSession{Status: model.SessionPending, TotalFiles: 1}).
		Return(&model.AnalysisSession{ID: "s1", Status: model.SessionPending, TotalFiles: 1}, nil)
	mStore.On("CreateFile", ctx, mock.AnythingOfType("repository.NewFile")).Return(nil, errors.New("disk full"))
	mStore.On("UpdateSession", mock.Anything, "s1", repository.SessionStatusUpdate(model.SessionError)).
		Return(&model.AnalysisSession{ID: "s1", Status: model.SessionError}, nil)

	_, err := svc.Upload(ctx, UploadSingle, []UploadFile{file("a.py", "a")})
	assert.EqualError(t, err, "create file record: disk full")
	mStore.AssertExpectations(t)
}

func TestAnalysisService_UploadQueueFull(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	svc := newTestService(fx, &recordingDispatcher{err: errors.New("queue full")})

	_, err := svc.Upload(ctx, UploadSingle, []UploadFile{file("a.c", "int main(){}")})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestAnalysisService_UploadQueueFullRemovesObjects(t *testing.T) {
	ctx := context.Background()
	n := 0
	store := memory.NewStore(memory.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))
	objects := storage.NewMemory()
	svc := NewAnalysisService(store, objects, &recordingDispatcher{err: errors.New("queue full")}, testUpload, nil)

	sess, err := svc.Upload(ctx, UploadFolder, []UploadFile{file("a.c", "int a;"), file("b.c", "int b;")})
	require.ErrorIs(t, err, ErrQueueFull)
	assert.Nil(t, sess)

	got, err := store.GetSession(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, model.SessionError, got.Status)

	files, err := store.ListFilesBySession(ctx, "id-1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		_, _, err := objects.Get(ctx, f.ObjectKey)
		assert.ErrorIs(t, err, storage.ErrObjectNotFound, f.ObjectKey)
	}
}

func TestAnalysisService_StatusAndResults(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	svc := newTestService(fx, &recordingDispatcher{})

	_, err := svc.Status(ctx, "")
	assert.ErrorIs(t, err, ErrIDRequired)
	_, err = svc.Status(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Results(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	sess, err := svc.Upload(ctx, UploadSingle, []UploadFile{file("demo.js", "console.log(1)")})
	require.NoError(t, err)

	view, err := svc.Status(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionPending, view.Status)
	assert.False(t, view.Stages.UploadDone)
	assert.Nil(t, view.UploadTime)
	assert.Equal(t, int64(len("console.log(1)")), view.TotalSize)

	_, err = svc.Results(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotCompleted)

	complete(t, fx, sess.ID)

	view, err = svc.Status(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, view.Status)
	assert.True(t, view.Stages.ReviewDone)
	assert.Equal(t, 1, view.ProcessedFiles)

	res, err := svc.Results(ctx, sess.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.PassedChecks, 0)
	assert.GreaterOrEqual(t, res.Warnings, 0)
	assert.GreaterOrEqual(t, res.Errors, 0)
	require.NotEmpty(t, res.Issues)
	for _, is := range res.Issues {
		assert.Equal(t, "demo.js", is.File)
	}
}

func TestAnalysisService_ResultsAfterFailure(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	svc := newTestService(fx, &recordingDispatcher{})

	sess, err := svc.Upload(ctx, UploadSingle, []UploadFile{file("a.js", "x")})
	require.NoError(t, err)

	p := NewProcessor(fx.store, fx.objects, providerFunc(func(context.Context, []string, []string) (*model.AnalysisResult, error) {
		return nil, errors.New("throttled")
	}))
	require.Error(t, p.ProcessSession(ctx, sess.ID))

	view, err := svc.Status(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionError, view.Status)

	_, err = svc.Results(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotCompleted)
}

func TestAnalysisService_TriggerProcessing(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	svc := newTestService(fx, &recordingDispatcher{})

	sess, err := svc.Upload(ctx, UploadSingle, []UploadFile{file("a.js", "x")})
	require.NoError(t, err)
	files, _ := fx.store.ListFilesBySession(ctx, sess.ID)
	key := files[0].ObjectKey

	_, err = svc.TriggerProcessing(ctx, "", key)
	assert.ErrorIs(t, err, ErrIDRequired)
	_, err = svc.TriggerProcessing(ctx, sess.ID, "sessions/none")
	assert.ErrorIs(t, err, ErrFileNotFound)
	_, err = svc.TriggerProcessing(ctx, "other-session", key)
	assert.ErrorIs(t, err, ErrFileNotFound)

	f, err := svc.TriggerProcessing(ctx, sess.ID, key)
	require.NoError(t, err)
	assert.Equal(t, model.FileProcessing, f.Status)

	complete(t, fx, sess.ID)
	_, err = svc.TriggerProcessing(ctx, sess.ID, key)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAnalysisService_Reanalyze(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	d := &recordingDispatcher{}
	svc := newTestService(fx, d)

	_, err := svc.Reanalyze(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	orig, err := svc.Upload(ctx, UploadFolder, []UploadFile{file("a.js", "A"), file("b.js", "B")})
	require.NoError(t, err)
	complete(t, fx, orig.ID)
	before, _ := fx.store.GetSession(ctx, orig.ID)

	next, err := svc.Reanalyze(ctx, orig.ID)
	require.NoError(t, err)
	assert.NotEqual(t, orig.ID, next.ID)
	assert.Equal(t, model.SessionPending, next.Status)
	assert.Equal(t, []string{orig.ID, next.ID}, d.ids)

	after, _ := fx.store.GetSession(ctx, orig.ID)
	assert.Equal(t, before, after, "source session is left untouched")

	files, err := fx.store.ListFilesBySession(ctx, next.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	for i, want := range []string{"A", "B"} {
		data, _, err := storage.ReadAll(ctx, fx.objects, files[i].ObjectKey)
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
		assert.Contains(t, files[i].ObjectKey, next.ID)
	}
}

func TestAnalysisService_Share(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	svc := newTestService(fx, &recordingDispatcher{})

	sess, err := svc.Upload(ctx, UploadSingle, []UploadFile{file("a.go", "package a")})
	require.NoError(t, err)

	_, err = svc.Share(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotCompleted)
	_, err = svc.Share(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	complete(t, fx, sess.ID)
	shareID, err := svc.Share(ctx, sess.ID)
	require.NoError(t, err)
	assert.Regexp(t, `^share-`+sess.ID+`-[0-9a-f]{8}$`, shareID)

	shared, err := svc.SharedResults(ctx, shareID)
	require.NoError(t, err)
	direct, err := svc.Results(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, direct, shared)

	_, err = svc.SharedResults(ctx, "share-garbage")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseShareID(t *testing.T) {
	tests := []struct {
		in     string
		wantID string
		wantOK bool
	}{
		{"share-0b6f3a58-2c0e-4f57-9a55-3f7d0c1e9b11-1a2b3c4d", "0b6f3a58-2c0e-4f57-9a55-3f7d0c1e9b11", true},
		{"share-abc-deadbeef", "abc", true},
		{"share-abc-deadbee", "", false},
		{"share-abc-nothexxx", "", false},
		{"share--deadbeef", "", false},
		{"abc-deadbeef", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		id, ok := ParseShareID(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.wantID, id, tt.in)
	}
}
