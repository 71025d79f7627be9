package retrieval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fin-assist/internal/domain"
)

// Corpus mantiene el conjunto de documentos ingeridos en memoria con
// respaldo en un archivo JSON. Una corrida de ingesta reemplaza el
// contenido completo, nunca lo mezcla incrementalmente.
type Corpus struct {
	mu        sync.RWMutex
	path      string
	documents []domain.Document
}

// NewCorpus crea el corpus respaldado por path. Si el archivo existe
// se carga su contenido; si no, el corpus arranca vacio.
func NewCorpus(path string) (*Corpus, error) {
	c := &Corpus{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("read corpus file: %w", err)
	}

	if err := json.Unmarshal(data, &c.documents); err != nil {
		return nil, fmt.Errorf("parse corpus file: %w", err)
	}
	return c, nil
}

// ReplaceAll sustituye el corpus completo y lo persiste.
func (c *Corpus) ReplaceAll(documents []domain.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.documents = documents

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create corpus dir: %w", err)
	}
	data, err := json.MarshalIndent(documents, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal corpus: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write corpus file: %w", err)
	}
	return nil
}

// Documents devuelve una copia del contenido actual.
func (c *Corpus) Documents() []domain.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Document, len(c.documents))
	copy(out, c.documents)
	return out
}

// ByDay filtra los documentos cuya fecha cae en el dia dado
// (fecha calendario UTC, comparada como prefijo del ISO-8601).
func (c *Corpus) ByDay(day string) []domain.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []domain.Document
	for _, doc := range c.documents {
		if strings.HasPrefix(doc.Date, day) {
			out = append(out, doc)
		}
	}
	return out
}

// Len devuelve la cantidad de documentos en el corpus.
func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.documents)
}
