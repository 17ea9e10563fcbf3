package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// extractError matches the extraction boundary contract: a JSON body of
// {success:false, error} with a non-2xx status, unlike the envelope the rest
// of the API uses.
func extractError(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// ExtractAudio converts an uploaded video into the normalized WAV the
// recognition stage needs and returns it as a binary body.
// POST /api/v1/audio/extract
func (h *ApplicationHandler) ExtractAudio(c *fiber.Ctx) error {
	file, err := c.FormFile("video")
	if err != nil {
		return extractError(c, fiber.StatusBadRequest, "no video file in request")
	}
	if code, msg := h.checkUpload(file); code != 0 {
		return extractError(c, code, msg)
	}

	src, err := file.Open()
	if err != nil {
		h.Logger.Errorf("Error opening uploaded file: %v", err)
		return extractError(c, fiber.StatusInternalServerError, fmt.Sprintf("error opening file: %v", err))
	}
	defer src.Close()

	clip, err := h.Extractor.Extract(c.Context(), src)
	if err != nil {
		h.Logger.Errorf("Audio extraction failed: %v", err)
		return extractError(c, fiber.StatusInternalServerError, fmt.Sprintf("error processing video: %v", err))
	}

	c.Set(fiber.HeaderContentType, "audio/wav")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", clip.Name))
	return c.Send(clip.Data)
}
