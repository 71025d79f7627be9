package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"fin-assist/internal/domain"
)

// Ingestor normaliza mensajes crudos de los canales configurados en
// Documents del corpus. Cada invocacion de Fetch es una fachada
// sincronica: el fan-out por canal ocurre dentro de la llamada y se
// espera a que termine por completo antes de devolver.
type Ingestor struct {
	transport Transport
	logger    *zap.Logger
}

func NewIngestor(transport Transport, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{transport: transport, logger: logger}
}

// Fetch trae hasta limit mensajes por canal y devuelve los documentos
// normalizados preservando el orden de los canales. Los canales son
// independientes: el fallo de uno no descarta lo ya recolectado de
// otros; los fallos se agregan en el error devuelto junto al resultado
// parcial.
func (i *Ingestor) Fetch(ctx context.Context, channels []string, limit int) ([]domain.Document, error) {
	perChannel := make([][]domain.Document, len(channels))
	perChannelErr := make([]error, len(channels))

	var wg sync.WaitGroup
	for idx, channel := range channels {
		wg.Add(1)
		go func(idx int, channel string) {
			defer wg.Done()

			items, err := i.transport.FetchRecent(ctx, channel, limit)
			if err != nil {
				perChannelErr[idx] = fmt.Errorf("channel %s: %w", channel, err)
				return
			}
			perChannel[idx] = normalize(channel, items)
		}(idx, channel)
	}
	wg.Wait()

	var documents []domain.Document
	for idx, docs := range perChannel {
		if perChannelErr[idx] != nil {
			i.logger.Warn("channel ingestion failed",
				zap.String("channel", channels[idx]),
				zap.Error(perChannelErr[idx]),
			)
			continue
		}
		documents = append(documents, docs...)
	}

	return documents, errors.Join(perChannelErr...)
}

// normalize filtra y convierte los items crudos de un canal.
// Un item se descarta solo cuando no tiene texto utilizable; un item
// con texto y video se conserva.
func normalize(channel string, items []RawItem) []domain.Document {
	username := strings.TrimPrefix(channel, "@")

	docs := make([]domain.Document, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		docs = append(docs, domain.Document{
			Text: item.Text,
			Link: fmt.Sprintf("https://t.me/%s/%d", username, item.ID),
			Date: item.Date.UTC().Format(time.RFC3339),
		})
	}
	return docs
}
