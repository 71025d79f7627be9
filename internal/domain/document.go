package domain

// Document es una noticia normalizada producida por la ingesta y
// consumida por el motor de recuperacion. Link siempre es no vacio;
// Date es el timestamp de origen en ISO-8601.
type Document struct {
	Text string `json:"text"`
	Link string `json:"link"`
	Date string `json:"date,omitempty"`
}
