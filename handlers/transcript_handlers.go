package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"vidscribe/internal/store"
	"vidscribe/utils"
)

// UpdateSegmentTextPayload carries a segment text edit. The pointer keeps
// "clear the text" distinguishable from "field missing".
type UpdateSegmentTextPayload struct {
	Text *string `json:"text" validate:"required"`
}

// UpdateSectionTitlePayload carries a section title edit.
type UpdateSectionTitlePayload struct {
	Title *string `json:"title" validate:"required"`
}

func parseIntParam(c *fiber.Ctx, name string) (int, bool, error) {
	v, err := strconv.Atoi(c.Params(name))
	if err != nil {
		return 0, false, utils.RespondWithError(c, fiber.StatusBadRequest, "invalid "+name+" format")
	}
	return v, true, nil
}

// UpdateSegmentText replaces the text of one segment.
// PATCH /api/v1/transcriptions/:id/segments/:segmentId
func (h *ApplicationHandler) UpdateSegmentText(c *fiber.Ctx) error {
	sess, ok, err := h.requireStore(c)
	if !ok {
		return err
	}
	segmentID, ok, err := parseIntParam(c, "segmentId")
	if !ok {
		return err
	}

	var payload UpdateSegmentTextPayload
	if ok, err := h.parseBody(c, &payload); !ok {
		return err
	}

	seg, err := sess.Store().EditSegmentText(segmentID, *payload.Text)
	if errors.Is(err, store.ErrSegmentNotFound) {
		return utils.RespondWithError(c, fiber.StatusNotFound, "segment not found")
	}
	if err != nil {
		h.Logger.Errorf("Error editing segment %d: %v", segmentID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "error editing segment")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, seg)
}

// UpdateSectionTitle replaces the title of one section.
// PATCH /api/v1/transcriptions/:id/sections/:sectionId
func (h *ApplicationHandler) UpdateSectionTitle(c *fiber.Ctx) error {
	sess, ok, err := h.requireStore(c)
	if !ok {
		return err
	}
	sectionID, ok, err := parseIntParam(c, "sectionId")
	if !ok {
		return err
	}

	var payload UpdateSectionTitlePayload
	if ok, err := h.parseBody(c, &payload); !ok {
		return err
	}

	section, err := sess.Store().EditSectionTitle(sectionID, *payload.Title)
	if errors.Is(err, store.ErrSectionNotFound) {
		return utils.RespondWithError(c, fiber.StatusNotFound, "section not found")
	}
	if err != nil {
		h.Logger.Errorf("Error editing section %d: %v", sectionID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "error editing section")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, section)
}

// ToggleHighlight flips the highlight flag of one segment.
// POST /api/v1/transcriptions/:id/segments/:segmentId/highlight
func (h *ApplicationHandler) ToggleHighlight(c *fiber.Ctx) error {
	sess, ok, err := h.requireStore(c)
	if !ok {
		return err
	}
	segmentID, ok, err := parseIntParam(c, "segmentId")
	if !ok {
		return err
	}

	seg, err := sess.Store().ToggleHighlight(segmentID)
	if errors.Is(err, store.ErrSegmentNotFound) {
		return utils.RespondWithError(c, fiber.StatusNotFound, "segment not found")
	}
	if err != nil {
		h.Logger.Errorf("Error toggling highlight on segment %d: %v", segmentID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "error toggling highlight")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, seg)
}

// GetHighlights returns the derived highlight set, sorted by start time.
// GET /api/v1/transcriptions/:id/highlights
func (h *ApplicationHandler) GetHighlights(c *fiber.Ctx) error {
	sess, ok, err := h.requireStore(c)
	if !ok {
		return err
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"highlights": sess.Store().Highlights(),
	})
}
