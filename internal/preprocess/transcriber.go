package preprocess

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"consumo_wpp_backend/platform/logger"
)

// WhisperTranscriber runs local speech-to-text over whisper.cpp.
// WhatsApp voice notes arrive as opus; ffmpeg converts them to the
// 16kHz mono float32 stream the model expects.
type WhisperTranscriber struct {
	model whisper.Model
	log   *logger.Logger

	// whisper contexts are not safe for concurrent use
	mu sync.Mutex
}

func NewWhisperTranscriber(modelPath string, log *logger.Logger) (*WhisperTranscriber, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model %s: %w", modelPath, err)
	}
	return &WhisperTranscriber{model: model, log: log}, nil
}

func (t *WhisperTranscriber) Close() error {
	return t.model.Close()
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	samples, err := decodeToSamples(ctx, audio)
	if err != nil {
		return "", err
	}
	if len(samples) == 0 {
		return "", nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	wctx, err := t.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("create whisper context: %w", err)
	}
	if err := wctx.SetLanguage("pt"); err != nil {
		return "", fmt.Errorf("set whisper language: %w", err)
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper process: %w", err)
	}

	var sb strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if err != nil {
			break
		}
		sb.WriteString(segment.Text)
		sb.WriteString(" ")
	}
	return strings.TrimSpace(sb.String()), nil
}

// decodeToSamples shells out to ffmpeg to turn whatever container the
// message came in (ogg/opus, mp4, amr) into raw 16kHz mono f32le.
func decodeToSamples(ctx context.Context, audio []byte) ([]float32, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", "pipe:0",
		"-f", "f32le",
		"-ac", "1",
		"-ar", "16000",
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(audio)

	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode: %w: %s", err, errOut.String())
	}

	raw := out.Bytes()
	samples := make([]float32, 0, len(raw)/4)
	for i := 0; i+4 <= len(raw); i += 4 {
		bits := binary.LittleEndian.Uint32(raw[i : i+4])
		samples = append(samples, math.Float32frombits(bits))
	}
	return samples, nil
}
