package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"fin-assist/internal/domain"
	"fin-assist/internal/history"
	"fin-assist/internal/ingest"
	"fin-assist/internal/llm"
	"fin-assist/internal/retrieval"
)

// ErrNoNewsForDay indica que el corpus no tiene documentos para el dia
// pedido. Es una condicion no fatal: no se agrega nada al historial.
var ErrNoNewsForDay = errors.New("no news for the requested day")

// ErrEmptyHistory indica que no hay mensajes para guardar o exportar.
var ErrEmptyHistory = errors.New("chat history is empty")

// summaryQuestion es el texto fijo que ocupa el lugar de la pregunta
// del usuario en el flujo de resumen diario.
const summaryQuestion = "Сводка новостей за сегодня"

const timestampLayout = "15:04"

// ChatService orquesta un ciclo de pregunta/respuesta: recupera
// documentos, ensambla el contexto, invoca el completado y agrega el
// par de mensajes al historial en memoria. La sesion vive aqui hasta
// que se persiste explicitamente; no hay auto-guardado.
type ChatService struct {
	logger    *zap.Logger
	retriever retrieval.Retriever
	corpus    *retrieval.Corpus
	ingestor  *ingest.Ingestor
	llmClient llm.Client
	assembler *ContextAssembler
	store     history.Store

	channels      []string
	ingestLimit   int
	contextWindow int

	// mu serializa las interacciones: una pregunta a la vez hasta
	// completarse, aunque el front end HTTP atienda en paralelo.
	mu          sync.Mutex
	sessionName string
	messages    []domain.Message
}

func NewChatService(
	logger *zap.Logger,
	retriever retrieval.Retriever,
	corpus *retrieval.Corpus,
	ingestor *ingest.Ingestor,
	llmClient llm.Client,
	assembler *ContextAssembler,
	store history.Store,
	channels []string,
	ingestLimit int,
	contextWindow int,
) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if contextWindow <= 0 {
		contextWindow = 10
	}
	return &ChatService{
		logger:        logger,
		retriever:     retriever,
		corpus:        corpus,
		ingestor:      ingestor,
		llmClient:     llmClient,
		assembler:     assembler,
		store:         store,
		channels:      channels,
		ingestLimit:   ingestLimit,
		contextWindow: contextWindow,
	}
}

// Answer responde una pregunta del usuario con los documentos que el
// motor de recuperacion considere relevantes (se reenvian tal cual,
// sin filtrar). En exito agrega el par usuario/asistente como unidad
// atomica; en fallo el historial queda intacto.
func (s *ChatService) Answer(ctx context.Context, question string) (domain.Message, domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	documents, err := s.retriever.RelevantDocuments(ctx, question)
	if err != nil {
		return domain.Message{}, domain.Message{}, fmt.Errorf("retrieve documents: %w", err)
	}

	prompt := buildQuestionPrompt(documents, question)
	return s.completeAndAppend(ctx, prompt, question, documents, s.contextSlice())
}

// SummarizeDay genera el resumen de noticias del dia dado (fecha calendario UTC en
// formato ISO). Sin documentos para ese dia devuelve ErrNoNewsForDay y
// no toca el historial.
func (s *ChatService) SummarizeDay(ctx context.Context, day string) (domain.Message, domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	documents := s.corpus.ByDay(day)
	if len(documents) == 0 {
		return domain.Message{}, domain.Message{}, fmt.Errorf("%w: %s", ErrNoNewsForDay, day)
	}

	prompt := buildSummaryPrompt(documents)
	return s.completeAndAppend(ctx, prompt, summaryQuestion, documents, nil)
}

// SummarizeToday es SummarizeDay para la fecha UTC actual.
func (s *ChatService) SummarizeToday(ctx context.Context) (domain.Message, domain.Message, error) {
	return s.SummarizeDay(ctx, time.Now().UTC().Format("2006-01-02"))
}

// completeAndAppend es el tramo comun: ensambla, completa y agrega el
// par de turnos. El llamador debe tener tomado s.mu.
func (s *ChatService) completeAndAppend(
	ctx context.Context,
	prompt, userContent string,
	sources []domain.Document,
	contextHistory []domain.Message,
) (domain.Message, domain.Message, error) {
	request := s.assembler.Assemble(contextHistory, prompt)

	answer, err := s.llmClient.Complete(ctx, request)
	if err != nil {
		return domain.Message{}, domain.Message{}, fmt.Errorf("chat completion: %w", err)
	}

	now := time.Now().Format(timestampLayout)
	userMessage := domain.Message{
		Role:      domain.RoleUser,
		Content:   userContent,
		Timestamp: now,
	}
	assistantMessage := domain.Message{
		Role:      domain.RoleAssistant,
		Content:   answer,
		Timestamp: time.Now().Format(timestampLayout),
		Sources:   sources,
	}

	s.messages = append(s.messages, userMessage, assistantMessage)
	s.ensureSessionName()

	s.logger.Info("turn appended",
		zap.String("session", s.sessionName),
		zap.Int("history_len", len(s.messages)),
		zap.Int("sources", len(sources)),
	)
	return userMessage, assistantMessage, nil
}

// contextSlice devuelve los ultimos contextWindow mensajes del
// historial (10 en el comportamiento de referencia; el ensamblador
// recorta despues a su propia ventana de 8).
func (s *ChatService) contextSlice() []domain.Message {
	if len(s.messages) <= s.contextWindow {
		return s.messages
	}
	return s.messages[len(s.messages)-s.contextWindow:]
}

// UpdateCorpus corre la ingesta sobre los canales configurados y
// reemplaza el corpus completo con el resultado. Ante fallos parciales
// conserva lo recolectado de los canales sanos y devuelve el error
// agregado junto con la cantidad cargada.
func (s *ChatService) UpdateCorpus(ctx context.Context) (int, error) {
	documents, err := s.ingestor.Fetch(ctx, s.channels, s.ingestLimit)
	if len(documents) == 0 && err != nil {
		return 0, fmt.Errorf("ingest channels: %w", err)
	}

	if replaceErr := s.corpus.ReplaceAll(documents); replaceErr != nil {
		return 0, fmt.Errorf("replace corpus: %w", replaceErr)
	}
	return len(documents), err
}

// SaveSession persiste el historial actual bajo el nombre de la sesion
// (derivado del primer mensaje si aun no existe) y devuelve la ruta.
func (s *ChatService) SaveSession() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == 0 {
		return "", ErrEmptyHistory
	}

	s.ensureSessionName()
	path, err := s.store.Save(s.messages, s.sessionName)
	if err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return path, nil
}

// SaveSessionAs persiste el historial actual bajo un nombre explicito y
// lo adopta como nombre de la sesion en memoria, igual que hace el
// guardado implicito con el nombre derivado.
func (s *ChatService) SaveSessionAs(sessionName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == 0 {
		return "", ErrEmptyHistory
	}

	path, err := s.store.Save(s.messages, sessionName)
	if err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	s.sessionName = sessionName
	return path, nil
}

// LoadSession reemplaza el historial en memoria por la sesion guardada
// y adopta su nombre.
func (s *ChatService) LoadSession(identifier string) ([]domain.Message, error) {
	messages, err := s.store.Load(identifier)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = messages
	s.sessionName = strings.TrimSuffix(identifier, ".json")
	return s.historyLocked(), nil
}

// ClearSession descarta la sesion en memoria. No toca lo persistido.
func (s *ChatService) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.sessionName = ""
}

// History devuelve una copia del historial en memoria.
func (s *ChatService) History() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyLocked()
}

// historyLocked copia el historial. El llamador debe tener tomado s.mu.
func (s *ChatService) historyLocked() []domain.Message {
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// SessionName devuelve el nombre actual de la sesion ("" si aun no se
// necesito una decision de nombre).
func (s *ChatService) SessionName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionName
}

// ensureSessionName asigna el nombre de la sesion de forma perezosa la
// primera vez que hay un mensaje de usuario. Una vez asignado es
// estable para esta sesion en memoria.
func (s *ChatService) ensureSessionName() {
	if s.sessionName != "" {
		return
	}
	s.sessionName = sessionNameFromMessages(s.messages)
}

// sessionNameFromMessages deriva el nombre desde el contenido del primer
// mensaje de usuario: primeros 30 runes, solo letras/digitos/espacio/
// guion/guion bajo, espacios a guiones bajos y corte final a 25 runes.
func sessionNameFromMessages(messages []domain.Message) string {
	for _, msg := range messages {
		if msg.Role != domain.RoleUser {
			continue
		}

		runes := []rune(msg.Content)
		if len(runes) > 30 {
			runes = runes[:30]
		}

		var b strings.Builder
		for _, r := range runes {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
				b.WriteRune(r)
			}
		}

		name := strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
		if trimmed := []rune(name); len(trimmed) > 25 {
			name = string(trimmed[:25])
		}
		if name != "" {
			return name
		}
		break
	}
	return "session_" + time.Now().Format("20060102_1504")
}
