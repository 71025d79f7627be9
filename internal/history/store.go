package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"fin-assist/internal/domain"
)

var (
	// ErrSessionNotFound indica que no existe archivo para el identificador pedido.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidFormat indica que el archivo no coincide con ninguna forma soportada.
	ErrInvalidFormat = errors.New("invalid chat history file format")
)

// Store define el contrato de persistencia de sesiones de chat.
type Store interface {
	Save(messages []domain.Message, sessionName string) (string, error)
	Load(identifier string) ([]domain.Message, error)
	List() ([]SessionSummary, error)
	Delete(identifier string) bool
}

// SessionSummary es la vista reducida de una sesion guardada que devuelve List.
// MessageCount puede ser un entero o la cadena "Unknown" cuando el contenido
// del archivo legado no es una secuencia.
type SessionSummary struct {
	SessionName  string `json:"session_name"`
	CreatedAt    string `json:"created_at"`
	MessageCount any    `json:"message_count"`
	Filename     string `json:"filename"`
}

// savedSession es la forma actual en disco: metadatos + historial.
type savedSession struct {
	Metadata    domain.SessionMetadata `json:"metadata"`
	ChatHistory []domain.Message       `json:"chat_history"`
}

const createdAtLayout = "2006-01-02T15:04:05"

// FileStore guarda cada sesion como un archivo JSON bajo un directorio raiz.
// Cada Save sobreescribe por completo el archivo de ese nombre; no hay
// sincronizacion entre escritores concurrentes (gana la ultima escritura).
type FileStore struct {
	dir    string
	logger *zap.Logger
}

func NewFileStore(dir string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{dir: dir, logger: logger}
}

// Save escribe el historial bajo sessionName y devuelve la ruta del archivo.
// Con nombre vacio sintetiza uno a partir del timestamp actual.
func (s *FileStore) Save(messages []domain.Message, sessionName string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create history dir: %w", err)
	}

	if sessionName == "" {
		sessionName = "chat_" + time.Now().Format("20060102_150405")
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	payload := savedSession{
		Metadata: domain.SessionMetadata{
			CreatedAt:    time.Now().Format(createdAtLayout),
			MessageCount: len(messages),
			SessionName:  sessionName,
		},
		ChatHistory: messages,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	path := filepath.Join(s.dir, sessionName+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write session file: %w", err)
	}
	return path, nil
}

// Load lee una sesion por identificador (con o sin sufijo .json).
// Acepta dos formas en disco: la secuencia desnuda de mensajes (legado)
// y el sobre con metadatos (actual). Cualquier otra forma es ErrInvalidFormat.
func (s *FileStore) Load(identifier string) ([]domain.Message, error) {
	path := filepath.Join(s.dir, fileName(identifier))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, identifier)
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	return decodeSession(data)
}

// decodeSession distingue explicitamente las dos versiones del esquema
// en disco mirando la forma del JSON, sin duck-typing.
func decodeSession(data []byte) ([]domain.Message, error) {
	trimmed := strings.TrimLeftFunc(string(data), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if trimmed == "" {
		return nil, ErrInvalidFormat
	}

	switch trimmed[0] {
	case '[':
		// Forma legada: lista de mensajes sin sobre.
		var messages []domain.Message
		if err := json.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return messages, nil
	case '{':
		// Forma actual: sobre con chat_history.
		var wrapped struct {
			ChatHistory *[]domain.Message `json:"chat_history"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		if wrapped.ChatHistory == nil {
			return nil, ErrInvalidFormat
		}
		return *wrapped.ChatHistory, nil
	default:
		return nil, ErrInvalidFormat
	}
}

// List enumera todas las sesiones guardadas ordenadas por created_at
// descendente. Un archivo ilegible o corrupto se omite con un warning,
// nunca aborta el listado completo.
func (s *FileStore) List() ([]SessionSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionSummary{}, nil
		}
		return nil, fmt.Errorf("read history dir: %w", err)
	}

	summaries := make([]SessionSummary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		summary, err := s.summarize(entry.Name())
		if err != nil {
			s.logger.Warn("skipping unreadable session file",
				zap.String("filename", entry.Name()),
				zap.Error(err),
			)
			continue
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt > summaries[j].CreatedAt
	})
	return summaries, nil
}

func (s *FileStore) summarize(filename string) (SessionSummary, error) {
	path := filepath.Join(s.dir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		return SessionSummary{}, err
	}

	var wrapped struct {
		Metadata *domain.SessionMetadata `json:"metadata"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Metadata != nil {
		return SessionSummary{
			SessionName:  wrapped.Metadata.SessionName,
			CreatedAt:    wrapped.Metadata.CreatedAt,
			MessageCount: wrapped.Metadata.MessageCount,
			Filename:     filename,
		}, nil
	}

	// Forma legada: metadatos sintetizados desde el propio archivo.
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return SessionSummary{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return SessionSummary{}, err
	}

	var count any = "Unknown"
	if list, ok := raw.([]any); ok {
		count = len(list)
	}

	return SessionSummary{
		SessionName:  strings.TrimSuffix(filename, ".json"),
		CreatedAt:    info.ModTime().Format(createdAtLayout),
		MessageCount: count,
		Filename:     filename,
	}, nil
}

// Delete elimina la sesion guardada si existe. Devuelve false, no error,
// cuando el archivo no existe o no se pudo borrar.
func (s *FileStore) Delete(identifier string) bool {
	path := filepath.Join(s.dir, fileName(identifier))

	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("delete session failed", zap.String("identifier", identifier), zap.Error(err))
		}
		return false
	}
	return true
}

func fileName(identifier string) string {
	if strings.HasSuffix(identifier, ".json") {
		return identifier
	}
	return identifier + ".json"
}

var _ Store = (*FileStore)(nil)
