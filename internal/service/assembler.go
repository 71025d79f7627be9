package service

import (
	"fin-assist/internal/domain"
	"fin-assist/internal/llm"
)

// ContextAssembler construye la secuencia exacta de mensajes que se
// envia al colaborador de completado: instruccion de sistema + los
// ultimos K turnos del historial + el prompt actual. Los turnos mas
// viejos se descartan en silencio, nunca se resumen.
type ContextAssembler struct {
	systemPrompt string
	window       int
}

// NewContextAssembler crea un ensamblador con la ventana dada de turnos
// previos (8 en el comportamiento de referencia).
func NewContextAssembler(window int) *ContextAssembler {
	if window <= 0 {
		window = 8
	}
	return &ContextAssembler{
		systemPrompt: financialSystemPrompt,
		window:       window,
	}
}

// Assemble produce [system] + ultimos window turnos filtrados + [prompt].
// Todo mensaje cuyo rol no sea user/assistant se excluye antes del
// recorte.
func (a *ContextAssembler) Assemble(history []domain.Message, prompt string) []llm.Message {
	filtered := make([]domain.Message, 0, len(history))
	for _, msg := range history {
		if msg.Role == domain.RoleUser || msg.Role == domain.RoleAssistant {
			filtered = append(filtered, msg)
		}
	}
	if len(filtered) > a.window {
		filtered = filtered[len(filtered)-a.window:]
	}

	messages := make([]llm.Message, 0, len(filtered)+2)
	messages = append(messages, llm.Message{Role: "system", Content: a.systemPrompt})
	for _, msg := range filtered {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, llm.Message{Role: domain.RoleUser, Content: prompt})
	return messages
}
