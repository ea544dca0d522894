package errors

import (
	"video-uploader/pkg/constants"
	"video-uploader/pkg/errors/i18n"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Retry      string `json:"retry"`
	UploadSize *int64 `json:"uploadSize,omitempty"`
}

// StatusFor maps an error kind onto the HTTP status and the retry hint.
func StatusFor(kind Kind) (int, string) {
	switch kind {
	case KindValidation:
		return fiber.StatusBadRequest, constants.RetryNone
	case KindConflict:
		return fiber.StatusConflict, constants.RetryCorrectedOffset
	case KindNotFound:
		return fiber.StatusNotFound, constants.RetryNone
	case KindTransientIO:
		return fiber.StatusInternalServerError, constants.RetrySame
	case KindContentPolicy:
		return fiber.StatusUnprocessableEntity, constants.RetryTerminal
	case KindProcessExecution:
		return fiber.StatusInternalServerError, constants.RetryTerminal
	default:
		return fiber.StatusInternalServerError, constants.RetrySame
	}
}

func HandleError(c *fiber.Ctx, log *zap.Logger, err error) error {
	if err == nil {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}

	ue, ok := As(err)
	if !ok {
		log.Error("unexpected error", zap.Error(err))
		ue = ErrInternal(err)
	} else if ue.Err != nil {
		log.Warn("request failed",
			zap.String("code", ue.Code),
			zap.String("kind", ue.Kind.String()),
			zap.Error(ue.Err))
	}

	status, retry := StatusFor(ue.Kind)
	if ue.Code == "staging_exists" {
		retry = constants.RetrySame
	}

	return c.Status(status).JSON(ErrorResponse{
		Error:      ue.Code,
		Message:    message(ue),
		Retry:      retry,
		UploadSize: ue.UploadSize,
	})
}

func message(ue *UploadError) string {
	if msg := i18n.T(ue.Code); msg != ue.Code {
		return msg
	}
	return ue.Message
}
