package mocks

import (
	"context"

	"codereview/internal/model"
	"codereview/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Upload(ctx context.Context, uploadType string, files []service.UploadFile) (*model.AnalysisSession, error) {
	args := m.Called(ctx, uploadType, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisSession), args.Error(1)
}

func (m *MockAnalysisService) Status(ctx context.Context, sessionID string) (*model.SessionStatusView, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionStatusView), args.Error(1)
}

func (m *MockAnalysisService) Results(ctx context.Context, sessionID string) (*model.AnalysisResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisResult), args.Error(1)
}

func (m *MockAnalysisService) TriggerProcessing(ctx context.Context, sessionID, objectKey string) (*model.FileAnalysis, error) {
	args := m.Called(ctx, sessionID, objectKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileAnalysis), args.Error(1)
}

func (m *MockAnalysisService) Reanalyze(ctx context.Context, sessionID string) (*model.AnalysisSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisSession), args.Error(1)
}

func (m *MockAnalysisService) Share(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

func (m *MockAnalysisService) SharedResults(ctx context.Context, shareID string) (*model.AnalysisResult, error) {
	args := m.Called(ctx, shareID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisResult), args.Error(1)
}
