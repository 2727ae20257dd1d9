package conversation

import (
	"context"
	"sync"

	"consumo_wpp_backend/internal/catalog"
	"consumo_wpp_backend/internal/consumption"
	domainevents "consumo_wpp_backend/internal/events"
	"consumo_wpp_backend/platform/events"
	"consumo_wpp_backend/platform/logger"
)

// Fixed replies. These texts are part of the product surface; change
// them only together with the support team.
const (
	DenialMessage        = "Desculpe, só posso processar registros de consumo. Para outras solicitações, entre em contato com o suporte."
	SuccessMessage       = "Seu registro foi salvo com sucesso!"
	FailurePrefix        = "Não foi possível salvar seu registro. Motivo: "
	ExpiryMessage        = "Conversa finalizada."
	UnknownSenderMessage = "Não foi possível identificar seu usuário. Por favor, entre em contato com o suporte."
	EmptyContentMessage  = "Não consegui entender sua mensagem. Por favor, tente novamente em texto, áudio ou imagem."
	InternalErrorMessage = "Desculpe, ocorreu um erro ao processar sua mensagem. Por favor, tente novamente."
)

// MessageSender delivers outbound WhatsApp messages.
type MessageSender interface {
	SendText(ctx context.Context, phone, message string) error
}

// IntentChecker gates messages before extraction.
type IntentChecker interface {
	Classify(ctx context.Context, message string, history []consumption.Turn) (bool, error)
}

// ReportExtractor turns a message plus history into a reported record
// or a clarification question.
type ReportExtractor interface {
	Extract(ctx context.Context, message string, history []consumption.Turn) (*consumption.ReportedConsumption, string, error)
}

// RecordResolver resolves a reported record against the catalog.
type RecordResolver interface {
	Resolve(ctx context.Context, phone string, reported consumption.ReportedConsumption, history []consumption.Turn) (consumption.BuildOutcome, error)
}

// RecordPersister posts the resolved record to the farm-management
// backend.
type RecordPersister interface {
	Save(ctx context.Context, growerID string, rec consumption.ResolvedConsumption) (bool, string, error)
}

// Service drives one sender's conversation through intent validation,
// extraction, resolution, verification and persistence. Turns for the
// same sender are serialized; different senders run concurrently.
type Service struct {
	store     Store
	intents   IntentChecker
	extractor ReportExtractor
	builder   RecordResolver
	persister RecordPersister
	gateway   catalog.Gateway
	sender    MessageSender
	bus       events.Bus
	growerID  string
	log       *logger.Logger

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

func NewService(
	store Store,
	intents IntentChecker,
	extractor ReportExtractor,
	builder RecordResolver,
	persister RecordPersister,
	gateway catalog.Gateway,
	sender MessageSender,
	bus events.Bus,
	growerID string,
	log *logger.Logger,
) *Service {
	return &Service{
		store:     store,
		intents:   intents,
		extractor: extractor,
		builder:   builder,
		persister: persister,
		gateway:   gateway,
		sender:    sender,
		bus:       bus,
		growerID:  growerID,
		locks:     make(map[string]*sync.Mutex),
		log:       log,
	}
}

func (s *Service) senderLock(phone string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	mu, ok := s.locks[phone]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[phone] = mu
	}
	return mu
}

// HandleMessage processes one normalized inbound message end to end.
// Every path sends exactly one reply. Paths that keep the conversation
// open append the user turn and the reply to memory; paths that close
// it clear the memory instead.
func (s *Service) HandleMessage(ctx context.Context, phone, message string) error {
	mu := s.senderLock(phone)
	mu.Lock()
	defer mu.Unlock()

	log := s.log.WithSender(phone)

	if message == "" {
		return s.close(ctx, phone, EmptyContentMessage)
	}

	responsible, err := s.gateway.ResponsibleByPhone(ctx, s.growerID, phone)
	if err != nil {
		s.log.PipelineError(phone, "identifying_sender", err)
		return s.reply(ctx, phone, InternalErrorMessage)
	}
	if responsible == nil {
		log.Warn("sender not registered as responsible")
		return s.close(ctx, phone, UnknownSenderMessage+" "+ExpiryMessage)
	}

	history, err := s.store.Load(ctx, phone)
	if err != nil {
		log.Error("failed to load conversation", "error", err)
		return s.reply(ctx, phone, InternalErrorMessage)
	}

	s.log.PipelineStage(phone, "validating_intent")
	valid, err := s.intents.Classify(ctx, message, history)
	if err != nil {
		s.log.PipelineError(phone, "validating_intent", err)
		return s.reply(ctx, phone, InternalErrorMessage)
	}
	if !valid {
		// aborted, but the history stays: a denial is not the end of
		// an in-flight registration
		return s.reply(ctx, phone, DenialMessage)
	}

	s.log.PipelineStage(phone, "extracting")
	reported, question, err := s.extractor.Extract(ctx, message, history)
	if err != nil {
		s.log.PipelineError(phone, "extracting", err)
		return s.reply(ctx, phone, InternalErrorMessage)
	}
	if question != "" {
		return s.ask(ctx, phone, history, message, question)
	}

	s.log.PipelineStage(phone, "resolving")
	outcome, err := s.builder.Resolve(ctx, phone, *reported, history)
	if err != nil {
		s.log.PipelineError(phone, "resolving", err)
		return s.reply(ctx, phone, InternalErrorMessage)
	}
	if outcome.Question != "" {
		return s.ask(ctx, phone, history, message, outcome.Question)
	}

	record := *outcome.Record
	record.ResponsibleID = responsible.ID

	s.log.PipelineStage(phone, "verifying")
	if ok, verifyQuestion := consumption.Verify(record); !ok {
		return s.ask(ctx, phone, history, message, verifyQuestion)
	}

	s.log.PipelineStage(phone, "persisting")
	accepted, reason, err := s.persister.Save(ctx, s.growerID, record)
	if err != nil {
		s.log.PipelineError(phone, "persisting", err)
		return s.reply(ctx, phone, InternalErrorMessage)
	}
	if !accepted {
		// the failed attempt stays in history so the user can correct
		// it instead of starting over
		return s.ask(ctx, phone, history, message, FailurePrefix+reason)
	}

	for _, p := range record.Products {
		s.bus.Publish(ctx, domainevents.NewConsumptionSaved(phone, p.ID, p.Name))
	}
	return s.close(ctx, phone, SuccessMessage)
}

// ask keeps the conversation open: the user turn and the question are
// appended to memory before the question goes out.
func (s *Service) ask(ctx context.Context, phone string, history []consumption.Turn, message, question string) error {
	history = append(history,
		consumption.Turn{Role: consumption.RoleUser, Content: message},
		consumption.Turn{Role: consumption.RoleAssistant, Content: question},
	)
	if err := s.store.Save(ctx, phone, history); err != nil {
		s.log.WithSender(phone).Error("failed to save conversation", "error", err)
		return s.reply(ctx, phone, InternalErrorMessage)
	}
	return s.reply(ctx, phone, question)
}

// close ends the conversation: memory is cleared so the next message
// starts fresh.
func (s *Service) close(ctx context.Context, phone, message string) error {
	if err := s.store.Clear(ctx, phone); err != nil {
		s.log.WithSender(phone).Error("failed to clear conversation", "error", err)
	}
	return s.reply(ctx, phone, message)
}

func (s *Service) reply(ctx context.Context, phone, message string) error {
	if err := s.sender.SendText(ctx, phone, message); err != nil {
		s.log.WithSender(phone).Error("failed to send reply", "error", err)
		return err
	}
	s.log.OutboundMessage(phone, len(message))
	return nil
}
