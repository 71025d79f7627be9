package domain

// Roles admitidos en el historial de conversacion.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message representa un turno del dialogo. Inmutable una vez agregado
// al historial; el orden de insercion es la unica garantia de orden.
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Timestamp string     `json:"timestamp"`
	Sources   []Document `json:"sources,omitempty"`
}
