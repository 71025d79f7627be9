package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// RawItem es un mensaje crudo tal como lo expone el transporte de
// canales: texto, id dentro del canal, fecha de origen y si el medio
// adjunto es un video.
type RawItem struct {
	ID       int64     `json:"id"`
	Text     string    `json:"text"`
	Date     time.Time `json:"date"`
	HasVideo bool      `json:"media_is_video"`
}

// Transport define el contrato "trae los N mensajes mas recientes de un
// canal". La implementacion real (gateway de Telegram) es intercambiable.
type Transport interface {
	FetchRecent(ctx context.Context, channel string, limit int) ([]RawItem, error)
}

// HTTPTransport habla con un gateway HTTP que expone el historial de
// canales publicos de Telegram.
type HTTPTransport struct {
	apiBase    string
	httpClient *http.Client
}

// NewHTTPTransport crea un transporte contra la URL base del gateway
// (e.g. "http://localhost:8100").
func NewHTTPTransport(apiBase string, requestTimeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		apiBase: strings.TrimRight(apiBase, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// response es el sobre generico de respuesta del gateway.
type response struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
}

// FetchRecent llama GET /channels/<channel>/messages?limit=N.
func (t *HTTPTransport) FetchRecent(ctx context.Context, channel string, limit int) ([]RawItem, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/channels/%s/messages?%s",
		t.apiBase, url.PathEscape(strings.TrimPrefix(channel, "@")), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create fetch request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("channel fetch request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read fetch response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("channel fetch non-success status=%d body=%s", resp.StatusCode, truncate(string(body), 400))
	}

	var envelope response
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse fetch response: %w", err)
	}
	if !envelope.OK {
		return nil, fmt.Errorf("channel fetch rejected for %s", channel)
	}

	var items []RawItem
	if err := json.Unmarshal(envelope.Result, &items); err != nil {
		return nil, fmt.Errorf("failed to parse fetch result: %w", err)
	}
	return items, nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}

var _ Transport = (*HTTPTransport)(nil)
