package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"vidscribe/internal/subtitle"
	"vidscribe/utils"
)

// GetSubtitles exports the transcript as WebVTT or SRT, segments ordered by
// start time across sections.
// GET /api/v1/transcriptions/:id/subtitles?format=vtt|srt
func (h *ApplicationHandler) GetSubtitles(c *fiber.Ctx) error {
	sess, ok, err := h.requireStore(c)
	if !ok {
		return err
	}

	segments := sess.Store().SegmentsByTime()
	switch format := c.Query("format", "vtt"); format {
	case "vtt":
		c.Set(fiber.HeaderContentType, "text/vtt; charset=utf-8")
		return c.SendString(subtitle.FormatVTT(segments))
	case "srt":
		c.Set(fiber.HeaderContentType, "application/x-subrip; charset=utf-8")
		return c.SendString(subtitle.FormatSRT(segments))
	default:
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("unknown subtitle format %q, expected vtt or srt", format))
	}
}
