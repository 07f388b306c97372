package handler

import (
	"codereview/internal/model"
)

type healthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Timestamp string `json:"timestamp"`
}

// sessionResponse answers upload and re-analysis requests.
type sessionResponse struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// statusResponse keeps the stage keys the browser client polls for.
type statusResponse struct {
	Status           model.SessionStatus `json:"status"`
	TotalFiles       int                 `json:"totalFiles"`
	ProcessedFiles   int                 `json:"processedFiles"`
	TotalSize        int64               `json:"totalSize"`
	UploadCompleted  bool                `json:"uploadCompleted"`
	LambdaCompleted  bool                `json:"lambdaCompleted"`
	EcsCompleted     bool                `json:"ecsCompleted"`
	BedrockCompleted bool                `json:"bedrockCompleted"`
	UploadTime       *float64            `json:"uploadTime"`
}

func newStatusResponse(v *model.SessionStatusView) statusResponse {
	return statusResponse{
		Status:           v.Status,
		TotalFiles:       v.TotalFiles,
		ProcessedFiles:   v.ProcessedFiles,
		TotalSize:        v.TotalSize,
		UploadCompleted:  v.Stages.UploadDone,
		LambdaCompleted:  v.Stages.DispatchDone,
		EcsCompleted:     v.Stages.ComputeDone,
		BedrockCompleted: v.Stages.ReviewDone,
		UploadTime:       v.UploadTime,
	}
}

type webhookRequest struct {
	SessionID string `json:"sessionId"`
	S3Key     string `json:"s3Key"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type shareResponse struct {
	ShareID  string `json:"shareId"`
	ShareURL string `json:"shareUrl"`
	Message  string `json:"message"`
}
