package handler

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"codereview/internal/service"
)

// UploadFiles godoc
// @Summary      Upload code files for review
// @Description  Accepts 1-6 code files and starts an analysis session.
// @Tags         analysis
// @Accept       multipart/form-data
// @Produce      json
// @Param        files       formData  file    true  "Code files"
// @Param        uploadType  formData  string  true  "single or folder"
// @Success      200  {object}  sessionResponse
// @Failure      400  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Failure      503  {object}  errorPayload
// @Router       /api/upload [post]
func UploadFiles(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "No files uploaded")
		}

		var uploadType string
		if v := form.Value["uploadType"]; len(v) > 0 {
			uploadType = v[0]
		}

		headers := form.File["files"]
		files := make([]service.UploadFile, 0, len(headers))
		var opened []io.Closer
		defer func() {
			for _, f := range opened {
				_ = f.Close()
			}
		}()
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			opened = append(opened, f)
			files = append(files, uploadFile(fh, f))
		}

		sess, err := svc.Upload(c.UserContext(), uploadType, files)
		if err != nil {
			return writeServiceError(c, err, "Upload failed")
		}
		return c.JSON(sessionResponse{SessionID: sess.ID, Message: "Files uploaded successfully"})
	}
}

func uploadFile(fh *multipart.FileHeader, r io.Reader) service.UploadFile {
	return service.UploadFile{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     r,
	}
}

// GetStatus godoc
// @Summary      Poll session status
// @Tags         analysis
// @Produce      json
// @Param        sessionId  path  string  true  "Session ID"
// @Success      200  {object}  statusResponse
// @Failure      404  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /api/analysis/status/{sessionId} [get]
func GetStatus(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := svc.Status(c.UserContext(), c.Params("sessionId"))
		if err != nil {
			return writeServiceError(c, err, "Failed to get status")
		}
		return c.JSON(newStatusResponse(view))
	}
}

// GetResults godoc
// @Summary      Aggregated review results
// @Tags         analysis
// @Produce      json
// @Param        sessionId  path  string  true  "Session ID"
// @Success      200  {object}  model.AnalysisResult
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /api/analysis/results/{sessionId} [get]
func GetResults(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Results(c.UserContext(), c.Params("sessionId"))
		if err != nil {
			return writeServiceError(c, err, "Failed to get results")
		}
		return c.JSON(res)
	}
}

// Webhook godoc
// @Summary      External processing trigger
// @Description  Marks the file stored under s3Key as processing.
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        body  body  webhookRequest  true  "Trigger"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Failure      409  {object}  errorPayload
// @Router       /api/webhook/process [post]
func Webhook(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webhookRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.SessionID == "" || req.S3Key == "" {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Missing sessionId or s3Key")
		}
		if _, err := svc.TriggerProcessing(c.UserContext(), req.SessionID, req.S3Key); err != nil {
			return writeServiceError(c, err, "Webhook failed")
		}
		return c.JSON(messageResponse{Message: "Processing triggered"})
	}
}

// Reanalyze godoc
// @Summary      Re-run analysis
// @Description  Copies the session's files into a new session and queues it.
// @Tags         analysis
// @Produce      json
// @Param        sessionId  path  string  true  "Session ID"
// @Success      200  {object}  sessionResponse
// @Failure      404  {object}  errorPayload
// @Failure      503  {object}  errorPayload
// @Router       /api/analysis/reanalyze/{sessionId} [post]
func Reanalyze(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := svc.Reanalyze(c.UserContext(), c.Params("sessionId"))
		if err != nil {
			return writeServiceError(c, err, "Failed to start re-analysis")
		}
		return c.JSON(sessionResponse{SessionID: sess.ID, Message: "Re-analysis started successfully"})
	}
}

// Share godoc
// @Summary      Share completed results
// @Tags         analysis
// @Produce      json
// @Param        sessionId  path  string  true  "Session ID"
// @Success      200  {object}  shareResponse
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Router       /api/analysis/share/{sessionId} [post]
func Share(svc service.AnalysisService, fallbackHost string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shareID, err := svc.Share(c.UserContext(), c.Params("sessionId"))
		if err != nil {
			return writeServiceError(c, err, "Failed to share results")
		}
		host := c.Hostname()
		if host == "" {
			host = fallbackHost
		}
		return c.JSON(shareResponse{
			ShareID:  shareID,
			ShareURL: c.Protocol() + "://" + host + "/shared/" + shareID,
			Message:  "Results shared successfully",
		})
	}
}

// GetShared godoc
// @Summary      Results behind a share link
// @Tags         analysis
// @Produce      json
// @Param        shareId  path  string  true  "Share ID"
// @Success      200  {object}  model.AnalysisResult
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Router       /api/shared/{shareId} [get]
func GetShared(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.SharedResults(c.UserContext(), c.Params("shareId"))
		if err != nil {
			return writeServiceError(c, err, "Failed to get shared results")
		}
		return c.JSON(res)
	}
}
