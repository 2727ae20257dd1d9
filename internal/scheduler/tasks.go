package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskInboundMessage = "whatsapp.inbound"

// InboundMessagePayload carries one webhook-received message into the
// background pipeline. Media stays referenced by URL; the worker
// downloads it when it picks the task up.
type InboundMessagePayload struct {
	Phone    string `json:"phone"`
	Kind     string `json:"kind"`
	Text     string `json:"text,omitempty"`
	MediaURL string `json:"mediaUrl,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

func NewInboundMessageTask(payload InboundMessagePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInboundMessage, data), nil
}

func ParseInboundMessagePayload(task *asynq.Task) (InboundMessagePayload, error) {
	var payload InboundMessagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return InboundMessagePayload{}, err
	}
	return payload, nil
}
