package pipeline

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"vidscribe/internal/asr"
	"vidscribe/internal/ffmpeg"
	"vidscribe/internal/playback"
	"vidscribe/internal/store"
	"vidscribe/internal/structuring"
	"vidscribe/models"
)

// The three stages are interfaces so tests can run the orchestrator against
// fakes. The concrete implementations live in internal/ffmpeg, internal/asr
// and internal/structuring.
type Extractor interface {
	Extract(ctx context.Context, video io.Reader) (*ffmpeg.Clip, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, name string, audio []byte) (*asr.Result, error)
}

type Structurer interface {
	Structure(ctx context.Context, raw []models.RawSegment) (*structuring.Result, error)
}

// Status tracks one pipeline run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// NoticeDegenerateHighlights is surfaced when structuring returned zero
// highlighted segments for a non-empty transcript.
const NoticeDegenerateHighlights = "the classifier marked no segments as highlights; highlight playback is unavailable until one is marked manually"

// Session is one pipeline run and the per-session state that outlives it.
// Store and Playback are nil until the run completes; they are assigned
// together in a single commit so no reader ever sees a partial transcript.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.RWMutex
	status   Status
	errMsg   string
	notice   string
	store    *store.Store
	playback *playback.Sync
}

// Snapshot is a read-consistent view of a session for status responses.
type Snapshot struct {
	ID     string
	Status Status
	Error  string
	Notice string
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{ID: s.ID, Status: s.status, Error: s.errMsg, Notice: s.notice}
}

// Store returns the committed transcript store, or nil while the pipeline
// has not completed.
func (s *Session) Store() *store.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// Playback returns the playback sync engine, or nil while the pipeline has
// not completed.
func (s *Session) Playback() *playback.Sync {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playback
}

func (s *Session) setProcessing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusProcessing
}

func (s *Session) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusFailed
	s.errMsg = msg
}

func (s *Session) commit(transcript models.Transcript, duration float64, notice string) {
	st := store.New(transcript, duration)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = st
	s.playback = playback.New(st)
	s.notice = notice
	s.status = StatusCompleted
}

// Manager owns the session registry and runs the pipeline stages strictly in
// sequence: extract, transcribe, structure, commit. A stage error aborts the
// remaining stages and the session fails with no partial transcript.
type Manager struct {
	extractor   Extractor
	transcriber Transcriber
	structurer  Structurer
	log         *logrus.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(extractor Extractor, transcriber Transcriber, structurer Structurer, log *logrus.Logger) *Manager {
	return &Manager{
		extractor:   extractor,
		transcriber: transcriber,
		structurer:  structurer,
		log:         log,
		sessions:    make(map[string]*Session),
	}
}

// Create registers a new pending session.
func (m *Manager) Create() *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		status:    StatusPending,
	}
	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	return sess
}

// Get looks up a session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Run executes the pipeline for a session. It blocks until the run finishes;
// callers that must not block put it on the worker dispatcher.
func (m *Manager) Run(ctx context.Context, sess *Session, video io.Reader) error {
	sess.setProcessing()
	entry := m.log.WithField("session_id", sess.ID)

	clip, err := m.extractor.Extract(ctx, video)
	if err != nil {
		entry.WithField("error", err.Error()).Error("Audio extraction failed")
		sess.fail("audio extraction failed: " + err.Error())
		return err
	}

	asrRes, err := m.transcriber.Transcribe(ctx, clip.Name, clip.Data)
	// The clip is ephemeral: consumed by the transcription submission and
	// discarded here regardless of outcome.
	clip.Data = nil
	if err != nil {
		entry.WithField("error", err.Error()).Error("Transcription failed")
		sess.fail("transcription failed: " + err.Error())
		return err
	}

	// A speechless video is a valid, empty transcript.
	if len(asrRes.Segments) == 0 {
		entry.Info("Transcription returned no segments")
		sess.commit(models.Transcript{}, asrRes.Duration, "")
		return nil
	}

	structRes, err := m.structurer.Structure(ctx, asrRes.Segments)
	if err != nil {
		entry.WithField("error", err.Error()).Error("Structuring failed")
		sess.fail("structuring failed: " + err.Error())
		return err
	}

	notice := ""
	if structRes.DegenerateHighlights {
		entry.Warn("Structuring returned no highlighted segments")
		notice = NoticeDegenerateHighlights
	}

	sess.commit(structRes.Transcript, asrRes.Duration, notice)
	entry.WithFields(logrus.Fields{
		"sections": len(structRes.Transcript),
		"segments": len(asrRes.Segments),
		"duration": asrRes.Duration,
	}).Info("Pipeline completed")
	return nil
}
