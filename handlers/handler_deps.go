package handlers

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"vidscribe/internal/ffmpeg"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/worker"
	"vidscribe/utils"
)

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Logger         *logrus.Logger
	Extractor      *ffmpeg.Extractor
	Sessions       *pipeline.Manager
	Dispatcher     *worker.Dispatcher
	Validate       *validator.Validate
	MaxUploadBytes int64
}

// NewApplicationHandler creates an ApplicationHandler with the given dependencies.
func NewApplicationHandler(logger *logrus.Logger, extractor *ffmpeg.Extractor, sessions *pipeline.Manager, dispatcher *worker.Dispatcher, maxUploadBytes int64) *ApplicationHandler {
	return &ApplicationHandler{
		Logger:         logger,
		Extractor:      extractor,
		Sessions:       sessions,
		Dispatcher:     dispatcher,
		Validate:       validator.New(),
		MaxUploadBytes: maxUploadBytes,
	}
}

// checkUpload is the input gate: video/* MIME and the configured size cap,
// enforced before any pipeline stage runs.
func (h *ApplicationHandler) checkUpload(file *multipart.FileHeader) (int, string) {
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") {
		return fiber.StatusBadRequest, fmt.Sprintf("unsupported content type %q, expected video/*", contentType)
	}
	if h.MaxUploadBytes > 0 && file.Size > h.MaxUploadBytes {
		return fiber.StatusRequestEntityTooLarge, fmt.Sprintf("file size %d exceeds the %d byte limit", file.Size, h.MaxUploadBytes)
	}
	return 0, ""
}

// parseBody parses and validates a JSON payload. A false return means the
// 400 response has already been written.
func (h *ApplicationHandler) parseBody(c *fiber.Ctx, payload interface{}) (bool, error) {
	if err := c.BodyParser(payload); err != nil {
		return false, utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse JSON: %v", err))
	}
	if err := h.Validate.Struct(payload); err != nil {
		errors := utils.FormatValidationErrors(err)
		return false, utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(errors, ", "))
	}
	return true, nil
}
