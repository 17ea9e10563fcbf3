package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/go-audio/wav"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Recognition needs exactly this profile: mono, 16 kHz, 16-bit signed PCM.
const (
	sampleRate = 16000
	channels   = 1
	bitDepth   = 16
)

// Clip is the extracted audio, already read back into memory. The temporary
// files behind it are gone by the time Extract returns.
type Clip struct {
	SessionID string
	Name      string // "<session>.wav", the filename the ASR upload carries
	Data      []byte
}

// TranscodeError reports a transcoder process that exited non-zero.
type TranscodeError struct {
	ExitCode int
	Stderr   string
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("ffmpeg exited with code %d: %s", e.ExitCode, e.Stderr)
}

// ErrOutputMissing is returned when the transcoder reported success but no
// output file exists.
var ErrOutputMissing = errors.New("transcoder reported success but produced no output file")

// StorageError wraps an I/O fault while writing the input or reading the
// output artifact.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// Extractor converts a video byte stream into normalized PCM audio through an
// external transcoder process. Each invocation gets a fresh session id so
// concurrent extractions never collide on temporary storage, and both temp
// artifacts are removed on every exit path.
type Extractor struct {
	// BinaryPath is the ffmpeg executable, "ffmpeg" by default.
	BinaryPath string
	// TempDir is the scratch directory, <os.TempDir()>/video-processing by default.
	TempDir string
	// Transcoder, when set, replaces the ffmpeg subprocess. The two backends
	// are interchangeable; only their failure modes differ.
	Transcoder func(ctx context.Context, inputPath, outputPath string) error
	Logger     *logrus.Logger
}

// NewExtractor creates an Extractor with the subprocess backend.
func NewExtractor(tempDir string, logger *logrus.Logger) *Extractor {
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "video-processing")
	}
	return &Extractor{
		BinaryPath: "ffmpeg",
		TempDir:    tempDir,
		Logger:     logger,
	}
}

// Extract writes the video stream to a session-scoped temp file, transcodes
// it to the fixed audio profile, verifies and reads back the result. The
// profile is not configurable: the recognition stage accepts nothing else.
func (e *Extractor) Extract(ctx context.Context, video io.Reader) (*Clip, error) {
	if err := os.MkdirAll(e.TempDir, 0o755); err != nil {
		return nil, &StorageError{Op: "create temp dir", Err: err}
	}

	sessionID := uuid.NewString()
	inputPath := filepath.Join(e.TempDir, sessionID+"-input.mp4")
	outputPath := filepath.Join(e.TempDir, sessionID+"-output.wav")
	defer e.cleanup(sessionID, inputPath, outputPath)

	if err := writeFile(inputPath, video); err != nil {
		return nil, &StorageError{Op: "write input video", Err: err}
	}

	if err := e.transcode(ctx, inputPath, outputPath); err != nil {
		return nil, err
	}

	if _, err := os.Stat(outputPath); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrOutputMissing
		}
		return nil, &StorageError{Op: "stat output audio", Err: err}
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, &StorageError{Op: "read output audio", Err: err}
	}

	if err := verifyProfile(data); err != nil {
		return nil, err
	}

	if e.Logger != nil {
		e.Logger.WithFields(logrus.Fields{
			"session_id": sessionID,
			"bytes":      len(data),
		}).Info("Audio extraction completed")
	}

	return &Clip{
		SessionID: sessionID,
		Name:      sessionID + ".wav",
		Data:      data,
	}, nil
}

func (e *Extractor) transcode(ctx context.Context, inputPath, outputPath string) error {
	if e.Transcoder != nil {
		return e.Transcoder(ctx, inputPath, outputPath)
	}

	bin := e.BinaryPath
	if bin == "" {
		bin = "ffmpeg"
	}
	// ffmpeg -y -i <input> -vn -acodec pcm_s16le -ar 16000 -ac 1 <output>
	cmd := exec.CommandContext(ctx, bin,
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &TranscodeError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return &StorageError{Op: "run ffmpeg", Err: err}
	}
	return nil
}

// cleanup removes both temp artifacts. It runs on every exit path; a missing
// output file is normal on failure and not worth reporting.
func (e *Extractor) cleanup(sessionID, inputPath, outputPath string) {
	for _, p := range []string{inputPath, outputPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && e.Logger != nil {
			e.Logger.WithFields(logrus.Fields{
				"session_id": sessionID,
				"path":       p,
			}).Warnf("Failed to remove temp file: %v", err)
		}
	}
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// verifyProfile checks the WAV header against the fixed recognition profile.
func verifyProfile(data []byte) error {
	d := wav.NewDecoder(bytes.NewReader(data))
	d.ReadInfo()
	if !d.IsValidFile() {
		return fmt.Errorf("output is not a valid WAV file")
	}
	if d.SampleRate != sampleRate || d.NumChans != channels || d.BitDepth != bitDepth {
		return fmt.Errorf("output audio profile is %d Hz / %d ch / %d bit, want %d Hz / %d ch / %d bit",
			d.SampleRate, d.NumChans, d.BitDepth, sampleRate, channels, bitDepth)
	}
	return nil
}
