package model

import "time"

// FileStatus is the lifecycle state of a single uploaded file.
type FileStatus string

const (
	FileUploading  FileStatus = "uploading"
	FileProcessing FileStatus = "processing"
	FileAnalyzing  FileStatus = "analyzing"
	FileCompleted  FileStatus = "completed"
	FileError      FileStatus = "error"
)

// Terminal reports whether no further transitions are allowed.
func (s FileStatus) Terminal() bool {
	return s == FileCompleted || s == FileError
}

// FileAnalysis tracks one uploaded file and its share of the review result.
// ObjectKey is serialised as s3Key, the name the browser client already uses.
type FileAnalysis struct {
	ID             string          `json:"id"`
	SessionID      string          `json:"sessionId"`
	FileName       string          `json:"fileName"`
	FileSize       int64           `json:"fileSize"`
	FileType       string          `json:"fileType"`
	ObjectKey      string          `json:"s3Key"`
	Status         FileStatus      `json:"status"`
	AnalysisResult *AnalysisResult `json:"analysisResult"`
	CreatedAt      time.Time       `json:"createdAt"`
	CompletedAt    *time.Time      `json:"completedAt"`
}
