package domain

// SessionMetadata es el sobre de metadatos que acompaña a una sesion
// persistida. Se deriva al momento de guardar, no se recalcula despues.
type SessionMetadata struct {
	CreatedAt    string `json:"created_at"`
	MessageCount int    `json:"message_count"`
	SessionName  string `json:"session_name"`
}
