package mocks

import (
	"context"

	"codereview/internal/model"
	"codereview/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateSession(ctx context.Context, s repository.NewSession) (*model.AnalysisSession, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisSession), args.Error(1)
}

func (m *MockStore) GetSession(ctx context.Context, id string) (*model.AnalysisSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisSession), args.Error(1)
}

func (m *MockStore) UpdateSession(ctx context.Context, id string, u repository.SessionUpdate) (*model.AnalysisSession, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisSession), args.Error(1)
}

func (m *MockStore) CreateFile(ctx context.Context, f repository.NewFile) (*model.FileAnalysis, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileAnalysis), args.Error(1)
}

func (m *MockStore) GetFile(ctx context.Context, id string) (*model.FileAnalysis, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileAnalysis), args.Error(1)
}

func (m *MockStore) ListFilesBySession(ctx context.Context, sessionID string) ([]model.FileAnalysis, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileAnalysis), args.Error(1)
}

func (m *MockStore) GetFileByObjectKey(ctx context.Context, key string) (*model.FileAnalysis, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileAnalysis), args.Error(1)
}

func (m *MockStore) UpdateFile(ctx context.Context, id string, u repository.FileUpdate) (*model.FileAnalysis, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileAnalysis), args.Error(1)
}

func (m *MockStore) UpdateFileByObjectKey(ctx context.Context, key string, u repository.FileUpdate) (*model.FileAnalysis, error) {
	args := m.Called(ctx, key, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileAnalysis), args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
