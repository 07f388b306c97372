package service

import "codereview/internal/model"

// placeholderUploadSeconds is reported as uploadTime once every file is past
// uploading. Real transfer times are not measured.
const placeholderUploadSeconds = 1.2

// AggregateStatus derives the polling view from a session and its files.
// It is recomputed on every call and holds no state.
func AggregateStatus(s *model.AnalysisSession, files []model.FileAnalysis) model.SessionStatusView {
	stages := model.StageStatus{
		UploadDone:   true,
		DispatchDone: true,
		ComputeDone:  true,
		ReviewDone:   s.Status == model.SessionCompleted,
	}
	var total int64
	for _, f := range files {
		total += f.FileSize
		if f.Status == model.FileUploading {
			stages.UploadDone = false
		}
		if f.Status != model.FileProcessing && f.Status != model.FileCompleted {
			stages.DispatchDone = false
		}
		if f.Status != model.FileAnalyzing && f.Status != model.FileCompleted {
			stages.ComputeDone = false
		}
	}

	view := model.SessionStatusView{
		Status:         s.Status,
		TotalFiles:     s.TotalFiles,
		ProcessedFiles: s.ProcessedFiles,
		TotalSize:      total,
		Stages:         stages,
	}
	if stages.UploadDone {
		t := placeholderUploadSeconds
		view.UploadTime = &t
	}
	return view
}

// aggregateResults sums the per-file results in file order.
func aggregateResults(files []model.FileAnalysis) *model.AnalysisResult {
	out := model.NewAnalysisResult()
	for i := range files {
		out.Merge(files[i].AnalysisResult)
	}
	return out
}
