package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"video-uploader/internal/delivery/http/middleware"
	"video-uploader/internal/domain/dto"
	"video-uploader/internal/pkg/logger"
	"video-uploader/internal/usecases"
	apperrors "video-uploader/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MetadataHeader carries base64-encoded JSON metadata when the body holds the preview.
const MetadataHeader = "Upload-Metadata"

type UploadHandler struct {
	uploadService usecases.UploadService
	log           *zap.Logger
}

func NewUploadHandler(uploadService usecases.UploadService, log *zap.Logger) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, log: logger.Named(log, "upload_handler")}
}

// InitiateUpload
//
// @Summary      Initiate Upload
// @Description  Creates a video record. Local uploads get a staging area and answer 206 with the id to continue with; remote-provider videos are ready immediately.
// @Description  Metadata is base64 JSON in the Upload-Metadata header (the body is then the optional preview) or the JSON body itself.
// @Tags         Upload
// @Accept       json,octet-stream
// @Produce      json
// @Param        X-User-ID        header  string  true   "Caller identity"
// @Param        Upload-Metadata  header  string  false  "base64(JSON InitiateUploadRequestDTO)"
// @Param        metadata         body    dto.InitiateUploadRequestDTO  false  "Metadata when no header is sent"
// @Success      200  {object}  dto.InitiateUploadResponse  "Remote provider, nothing to upload"
// @Success      206  {object}  dto.InitiateUploadResponse  "Continue with the upload body"
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /videos/upload/initiate [post]
func (h *UploadHandler) InitiateUpload(c *fiber.Ctx) error {
	req, preview, err := h.parseInitiate(c)
	if err != nil {
		return apperrors.HandleError(c, h.log, err)
	}

	res, err := h.uploadService.InitiateUpload(c.UserContext(), middleware.OwnerID(c), req, preview)
	if err != nil {
		return apperrors.HandleError(c, h.log, err)
	}

	if res.Partial {
		return c.Status(fiber.StatusPartialContent).JSON(res)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

func (h *UploadHandler) parseInitiate(c *fiber.Ctx) (*dto.InitiateUploadRequestDTO, io.Reader, error) {
	req := &dto.InitiateUploadRequestDTO{}

	if raw := strings.TrimSpace(c.Get(MetadataHeader)); raw != "" {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, nil, apperrors.ErrInvalidRequest(err)
		}
		if err := json.Unmarshal(decoded, req); err != nil {
			return nil, nil, apperrors.ErrInvalidRequest(err)
		}
		return req, bodyReader(c), nil
	}

	if len(c.Body()) == 0 {
		return nil, nil, apperrors.ErrInvalidRequest(errors.New("missing upload metadata"))
	}
	if err := json.Unmarshal(c.Body(), req); err != nil {
		return nil, nil, apperrors.ErrInvalidRequest(err)
	}
	return req, nil, nil
}

// ContinueUpload
//
// @Summary      Continue Upload
// @Description  Appends the raw body to the staged file. from must equal the server's uploadSize; otherwise 409 carries the value to resume from.
// @Tags         Upload
// @Accept       octet-stream
// @Produce      json
// @Param        X-User-ID  header  string  true  "Caller identity"
// @Param        id         query   string  true  "Video ID"
// @Param        from       query   int     true  "Byte offset the body starts at"
// @Success      200  {object}  dto.ContinueUploadResponse
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse  "Offset mismatch, body includes uploadSize"
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /videos/upload/continue [post]
func (h *UploadHandler) ContinueUpload(c *fiber.Ctx) error {
	videoID := c.Query("id")
	if videoID == "" {
		return apperrors.HandleError(c, h.log, apperrors.ErrInvalidRequest(errors.New("missing id")))
	}
	from, err := strconv.ParseInt(c.Query("from"), 10, 64)
	if err != nil {
		return apperrors.HandleError(c, h.log, apperrors.ErrInvalidOffset(err))
	}

	res, err := h.uploadService.ContinueUpload(c.UserContext(), middleware.OwnerID(c),
		&dto.ContinueUploadRequestDTO{VideoID: videoID, FromOffset: from}, bodyReader(c))
	if err != nil {
		return apperrors.HandleError(c, h.log, err)
	}
	return c.JSON(res)
}

// UploadStatus
//
// @Summary      Get Upload Status
// @Description  Returns the authoritative uploadSize so a client can resume
// @Tags         Upload
// @Produce      json
// @Param        X-User-ID  header  string  true  "Caller identity"
// @Param        id         query   string  true  "Video ID"
// @Success      200  {object}  dto.UploadStatusResponse
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /videos/upload/status [get]
func (h *UploadHandler) UploadStatus(c *fiber.Ctx) error {
	videoID := c.Query("id")
	if videoID == "" {
		return apperrors.HandleError(c, h.log, apperrors.ErrInvalidRequest(errors.New("missing id")))
	}
	res, err := h.uploadService.GetUploadStatus(c.UserContext(), middleware.OwnerID(c), videoID)
	if err != nil {
		return apperrors.HandleError(c, h.log, err)
	}
	return c.JSON(res)
}

// bodyReader streams the request body when the server runs with
// StreamRequestBody, and falls back to the buffered body otherwise.
func bodyReader(c *fiber.Ctx) io.Reader {
	if stream := c.Context().RequestBodyStream(); stream != nil {
		return stream
	}
	return bytes.NewReader(c.Body())
}
