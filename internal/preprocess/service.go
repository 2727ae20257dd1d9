// Package preprocess normalizes inbound WhatsApp content to plain
// text: text passes through, audio is transcribed, images are
// described. Downstream stages only ever see text.
package preprocess

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"consumo_wpp_backend/platform/logger"
)

// Content kinds as they arrive from the webhook.
const (
	KindText  = "text"
	KindAudio = "audio"
	KindImage = "image"
)

// maxMediaBytes caps downloads; WhatsApp media beyond this is junk.
const maxMediaBytes = 25 << 20

// Input is one inbound message payload after webhook decoding.
type Input struct {
	Kind     string
	Text     string
	MediaURL string
	MimeType string
}

// Transcriber turns audio bytes into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Describer turns an image into a natural-language consumption report.
type Describer interface {
	Describe(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Archiver stores raw media for audit. Failures must not block the
// pipeline.
type Archiver interface {
	Archive(ctx context.Context, phone string, media []byte, mimeType string)
}

// Service dispatches by content kind. An empty return with nil error
// means the content could not be understood and the caller should ask
// the user to try again.
type Service struct {
	http        *http.Client
	transcriber Transcriber
	describer   Describer
	archiver    Archiver
	log         *logger.Logger
}

func NewService(transcriber Transcriber, describer Describer, archiver Archiver, log *logger.Logger) *Service {
	return &Service{
		http:        &http.Client{Timeout: 60 * time.Second},
		transcriber: transcriber,
		describer:   describer,
		archiver:    archiver,
		log:         log,
	}
}

// Normalize converts one inbound payload to plain text.
func (s *Service) Normalize(ctx context.Context, phone string, in Input) (string, error) {
	switch in.Kind {
	case KindText:
		return strings.TrimSpace(in.Text), nil

	case KindAudio:
		if s.transcriber == nil {
			s.log.Warn("audio received but transcription is disabled", "sender", phone)
			return "", nil
		}
		media, err := s.download(ctx, in.MediaURL)
		if err != nil {
			return "", fmt.Errorf("download audio: %w", err)
		}
		s.archive(ctx, phone, media, in.MimeType)
		text, err := s.transcriber.Transcribe(ctx, media, in.MimeType)
		if err != nil {
			return "", fmt.Errorf("transcribe audio: %w", err)
		}
		return strings.TrimSpace(text), nil

	case KindImage:
		media, err := s.download(ctx, in.MediaURL)
		if err != nil {
			return "", fmt.Errorf("download image: %w", err)
		}
		s.archive(ctx, phone, media, in.MimeType)
		text, err := s.describer.Describe(ctx, media, in.MimeType)
		if err != nil {
			return "", fmt.Errorf("describe image: %w", err)
		}
		return strings.TrimSpace(text), nil

	default:
		s.log.Warn("unsupported content kind", "kind", in.Kind, "sender", phone)
		return "", nil
	}
}

func (s *Service) archive(ctx context.Context, phone string, media []byte, mimeType string) {
	if s.archiver == nil {
		return
	}
	s.archiver.Archive(ctx, phone, media, mimeType)
}

func (s *Service) download(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty media url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media fetch returned status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes))
}
