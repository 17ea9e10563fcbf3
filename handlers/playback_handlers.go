package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"vidscribe/internal/playback"
	"vidscribe/utils"
)

// UpdatePositionPayload is a position report from the media clock.
type UpdatePositionPayload struct {
	Position *float64 `json:"position" validate:"required,gte=0"`
}

// SetModePayload switches the playback mode.
type SetModePayload struct {
	Mode *string `json:"mode" validate:"required,oneof=full highlight"`
}

// UpdatePosition feeds a position report to the sync engine and returns the
// active subtitle plus any seek or stop directive.
// POST /api/v1/transcriptions/:id/playback/position
func (h *ApplicationHandler) UpdatePosition(c *fiber.Ctx) error {
	sess, ok, err := h.requireStore(c)
	if !ok {
		return err
	}

	var payload UpdatePositionPayload
	if ok, err := h.parseBody(c, &payload); !ok {
		return err
	}

	update := sess.Playback().UpdatePosition(*payload.Position)
	return utils.RespondWithJSON(c, fiber.StatusOK, update)
}

// SetPlaybackMode toggles between full and highlight playback. Entering
// highlight mode with an empty highlight set is rejected with an explicit
// notice; the mode stays unchanged.
// POST /api/v1/transcriptions/:id/playback/mode
func (h *ApplicationHandler) SetPlaybackMode(c *fiber.Ctx) error {
	sess, ok, err := h.requireStore(c)
	if !ok {
		return err
	}

	var payload SetModePayload
	if ok, err := h.parseBody(c, &payload); !ok {
		return err
	}

	if err := sess.Playback().SetMode(playback.Mode(*payload.Mode)); err != nil {
		if errors.Is(err, playback.ErrNoHighlights) {
			return utils.RespondWithError(c, fiber.StatusConflict, "no highlighted segments to play; mark a highlight first")
		}
		h.Logger.Errorf("Error switching playback mode: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "error switching playback mode")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, sess.Playback().State())
}

// GetPlaybackState reports the current mode and position.
// GET /api/v1/transcriptions/:id/playback
func (h *ApplicationHandler) GetPlaybackState(c *fiber.Ctx) error {
	sess, ok, err := h.requireStore(c)
	if !ok {
		return err
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, sess.Playback().State())
}
