package handlers

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"vidscribe/internal/pipeline"
	"vidscribe/utils"
)

// CreateTranscription accepts a video upload, registers a session and queues
// the pipeline run on the dispatcher. The response returns immediately with
// the session id; clients poll GetTranscription for the result.
// POST /api/v1/transcriptions
func (h *ApplicationHandler) CreateTranscription(c *fiber.Ctx) error {
	file, err := c.FormFile("video")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "no video file in request")
	}
	if code, msg := h.checkUpload(file); code != 0 {
		return utils.RespondWithError(c, code, msg)
	}

	src, err := file.Open()
	if err != nil {
		h.Logger.Errorf("Error opening uploaded file: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "error opening uploaded file")
	}
	defer src.Close()

	video, err := io.ReadAll(src)
	if err != nil {
		h.Logger.Errorf("Error reading uploaded file: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "error reading uploaded file")
	}

	sess := h.Sessions.Create()
	job := &pipeline.TranscriptionJob{Manager: h.Sessions, Session: sess, Video: video}
	if err := h.Dispatcher.Submit(job); err != nil {
		h.Logger.Errorf("Could not queue transcription job %s: %v", sess.ID, err)
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "server is busy, try again later")
	}

	h.Logger.Infof("Queued transcription job for session %s (%s, %d bytes)", sess.ID, file.Filename, file.Size)
	return utils.RespondWithJSON(c, fiber.StatusAccepted, fiber.Map{
		"session_id": sess.ID,
		"status":     pipeline.StatusProcessing,
	})
}

// GetTranscription reports the state of a pipeline run, including the full
// transcript once the run has completed.
// GET /api/v1/transcriptions/:id
func (h *ApplicationHandler) GetTranscription(c *fiber.Ctx) error {
	sess, ok := h.Sessions.Get(c.Params("id"))
	if !ok {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("session %s not found", c.Params("id")))
	}

	snap := sess.Snapshot()
	data := fiber.Map{
		"session_id": snap.ID,
		"status":     snap.Status,
	}
	if snap.Error != "" {
		data["error"] = snap.Error
	}
	if snap.Notice != "" {
		data["notice"] = snap.Notice
	}
	if st := sess.Store(); st != nil {
		data["transcript"] = st.Transcript()
		data["duration"] = st.Duration()
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, data)
}

// requireStore resolves the session and its committed store, writing the
// error response itself when either is missing.
func (h *ApplicationHandler) requireStore(c *fiber.Ctx) (*pipeline.Session, bool, error) {
	sess, ok := h.Sessions.Get(c.Params("id"))
	if !ok {
		return nil, false, utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("session %s not found", c.Params("id")))
	}
	if sess.Store() == nil {
		return nil, false, utils.RespondWithError(c, fiber.StatusConflict, "transcript is not ready for this session")
	}
	return sess, true, nil
}
