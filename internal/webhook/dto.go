package webhook

// Z-API inbound payload. The provider posts one JSON document per
// received message; only the fields the pipeline needs are mapped.
type InboundPayload struct {
	Phone       string       `json:"phone" validate:"required,phone_digits"`
	MessageType string       `json:"type" validate:"required"`
	Text        *TextPayload `json:"text"`
	MediaURL    string       `json:"mediaUrl"`
	MimeType    string       `json:"mimeType"`
}

type TextPayload struct {
	Message string `json:"message"`
}

// Provider message types.
const (
	typeChat  = "chat"
	typeImage = "image"
	typeAudio = "audio"
	typePTT   = "ptt"
)
