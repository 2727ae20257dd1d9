package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"consumo_wpp_backend/internal/conversation"
	"consumo_wpp_backend/internal/preprocess"
	"consumo_wpp_backend/platform/logger"
)

// Worker consumes inbound message tasks and runs them through
// preprocessing and the conversation pipeline.
type Worker struct {
	server       *asynq.Server
	mux          *asynq.ServeMux
	preprocessor *preprocess.Service
	conversation *conversation.Service
	log          *logger.Logger
}

func NewWorker(redisURL string, concurrency int, preprocessor *preprocess.Service, conv *conversation.Service, log *logger.Logger) (*Worker, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			defaultQueue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:       server,
		mux:          mux,
		preprocessor: preprocessor,
		conversation: conv,
		log:          log,
	}

	mux.HandleFunc(TaskInboundMessage, w.handleInboundMessage)

	return w, nil
}

func (w *Worker) handleInboundMessage(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseInboundMessagePayload(task)
	if err != nil {
		return fmt.Errorf("parse inbound payload: %w", err)
	}

	text, err := w.preprocessor.Normalize(ctx, payload.Phone, preprocess.Input{
		Kind:     payload.Kind,
		Text:     payload.Text,
		MediaURL: payload.MediaURL,
		MimeType: payload.MimeType,
	})
	if err != nil {
		// preprocessing failures end up as "could not understand",
		// retrying the task would just repeat them
		w.log.PipelineError(payload.Phone, "preprocessing", err)
		text = ""
	}

	return w.conversation.HandleMessage(ctx, payload.Phone, text)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
