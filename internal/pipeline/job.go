package pipeline

import (
	"bytes"
	"context"
)

// TranscriptionJob runs one full pipeline pass on the worker dispatcher. The
// video bytes are captured at submission time; the uploaded stream is gone by
// the time a worker picks the job up.
type TranscriptionJob struct {
	Manager *Manager
	Session *Session
	Video   []byte
}

func (j *TranscriptionJob) ID() string { return j.Session.ID }

func (j *TranscriptionJob) Execute() error {
	defer func() { j.Video = nil }()
	return j.Manager.Run(context.Background(), j.Session, bytes.NewReader(j.Video))
}
