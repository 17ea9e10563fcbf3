package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWAV writes a tiny PCM file whose first sample is marker, so tests can
// tell two extractions apart.
func writeWAV(t *testing.T, path string, rate, chans, depth, marker int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, rate, depth, chans, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: chans, SampleRate: rate},
		Data:           []int{marker, 0, 0, 0},
		SourceBitDepth: depth,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func firstSample(t *testing.T, data []byte) int {
	t.Helper()
	d := wav.NewDecoder(bytes.NewReader(data))
	buf, err := d.FullPCMBuffer()
	require.NoError(t, err)
	require.NotEmpty(t, buf.Data)
	return buf.Data[0]
}

// fakeTranscoder emulates ffmpeg: it requires the input artifact to exist and
// writes a valid WAV whose first sample is the input's first byte.
func fakeTranscoder(t *testing.T) func(ctx context.Context, inputPath, outputPath string) error {
	return func(_ context.Context, inputPath, outputPath string) error {
		in, err := os.ReadFile(inputPath)
		if err != nil {
			return err
		}
		marker := 0
		if len(in) > 0 {
			marker = int(in[0])
		}
		writeWAV(t, outputPath, sampleRate, channels, bitDepth, marker)
		return nil
	}
}

func tempDirEmpty(t *testing.T, dir string) bool {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries) == 0
}

func TestExtractSuccess(t *testing.T) {
	dir := t.TempDir()
	e := &Extractor{TempDir: dir, Transcoder: fakeTranscoder(t)}

	clip, err := e.Extract(context.Background(), bytes.NewReader([]byte{42, 1, 2, 3}))
	require.NoError(t, err)
	require.NotNil(t, clip)

	assert.NotEmpty(t, clip.SessionID)
	assert.Equal(t, clip.SessionID+".wav", clip.Name)
	assert.Equal(t, 42, firstSample(t, clip.Data))

	// Both temp artifacts are gone on the success path.
	assert.True(t, tempDirEmpty(t, dir))
}

func TestExtractConcurrentSessionsDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	e := &Extractor{TempDir: dir, Transcoder: fakeTranscoder(t)}

	var wg sync.WaitGroup
	clips := make([]*Clip, 2)
	errs := make([]error, 2)
	for i, marker := range []byte{11, 22} {
		wg.Add(1)
		go func(i int, marker byte) {
			defer wg.Done()
			clips[i], errs[i] = e.Extract(context.Background(), bytes.NewReader([]byte{marker, 0}))
		}(i, marker)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.NotEqual(t, clips[0].SessionID, clips[1].SessionID)
	assert.Equal(t, 11, firstSample(t, clips[0].Data))
	assert.Equal(t, 22, firstSample(t, clips[1].Data))
	assert.True(t, tempDirEmpty(t, dir))
}

func TestExtractTranscodeFailure(t *testing.T) {
	dir := t.TempDir()
	e := &Extractor{
		TempDir: dir,
		Transcoder: func(_ context.Context, _, _ string) error {
			return &TranscodeError{ExitCode: 1, Stderr: "boom"}
		},
	}

	_, err := e.Extract(context.Background(), bytes.NewReader([]byte{1}))
	var tErr *TranscodeError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, 1, tErr.ExitCode)

	// Cleanup runs on the failure path too.
	assert.True(t, tempDirEmpty(t, dir))
}

func TestExtractOutputMissing(t *testing.T) {
	dir := t.TempDir()
	e := &Extractor{
		TempDir: dir,
		// Reports success without producing an output artifact.
		Transcoder: func(_ context.Context, _, _ string) error { return nil },
	}

	_, err := e.Extract(context.Background(), bytes.NewReader([]byte{1}))
	require.ErrorIs(t, err, ErrOutputMissing)
	assert.True(t, tempDirEmpty(t, dir))
}

func TestExtractRejectsWrongProfile(t *testing.T) {
	dir := t.TempDir()
	e := &Extractor{
		TempDir: dir,
		Transcoder: func(_ context.Context, _, outputPath string) error {
			writeWAV(t, outputPath, 44100, 2, 16, 0)
			return nil
		},
	}

	_, err := e.Extract(context.Background(), bytes.NewReader([]byte{1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio profile")
	assert.True(t, tempDirEmpty(t, dir))
}

func TestExtractStorageErrorOnUnreadableInput(t *testing.T) {
	dir := t.TempDir()
	e := &Extractor{TempDir: dir, Transcoder: fakeTranscoder(t)}

	_, err := e.Extract(context.Background(), failingReader{})
	var sErr *StorageError
	require.ErrorAs(t, err, &sErr)
	assert.True(t, tempDirEmpty(t, dir))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("short read") }
