package llm

import "context"

// MockClient permite tests sin llamar a un LLM real. Registra los
// mensajes recibidos en la ultima invocacion.
type MockClient struct {
	Response string
	Err      error
	LastSent []Message
}

func (m *MockClient) Complete(ctx context.Context, messages []Message) (string, error) {
	m.LastSent = messages
	return m.Response, m.Err
}

var _ Client = (*MockClient)(nil)
