package service

import (
	"fmt"
	"testing"

	"fin-assist/internal/domain"
)

func TestContextAssembler_Assemble(t *testing.T) {
	assembler := NewContextAssembler(8)

	t.Run("historial vacio produce system y prompt", func(t *testing.T) {
		messages := assembler.Assemble(nil, "вопрос")
		if len(messages) != 2 {
			t.Fatalf("expected [system, current], got %d messages", len(messages))
		}
		if messages[0].Role != "system" {
			t.Fatalf("expected system first, got %s", messages[0].Role)
		}
		if messages[1].Role != domain.RoleUser || messages[1].Content != "вопрос" {
			t.Fatalf("expected current prompt last, got %+v", messages[1])
		}
	})

	t.Run("nunca mas de K turnos previos", func(t *testing.T) {
		var history []domain.Message
		for i := 0; i < 30; i++ {
			history = append(history, domain.Message{
				Role:    domain.RoleUser,
				Content: fmt.Sprintf("msg%d", i),
			})
		}

		messages := assembler.Assemble(history, "current")
		if len(messages) != 10 { // system + 8 + current
			t.Fatalf("expected 10 messages, got %d", len(messages))
		}
		if messages[1].Content != "msg22" {
			t.Fatalf("expected oldest kept turn msg22, got %s", messages[1].Content)
		}
		if messages[8].Content != "msg29" {
			t.Fatalf("expected newest turn msg29, got %s", messages[8].Content)
		}
	})

	t.Run("roles ajenos se excluyen antes del recorte", func(t *testing.T) {
		history := []domain.Message{
			{Role: "system", Content: "sneaky"},
			{Role: domain.RoleUser, Content: "a"},
			{Role: "tool", Content: "noise"},
			{Role: domain.RoleAssistant, Content: "b"},
		}

		messages := assembler.Assemble(history, "current")
		if len(messages) != 4 { // system + a + b + current
			t.Fatalf("expected 4 messages, got %d", len(messages))
		}
		for _, m := range messages[1:3] {
			if m.Content == "sneaky" || m.Content == "noise" {
				t.Fatalf("foreign role leaked into context: %+v", m)
			}
		}
	})

	t.Run("el system prompt es fijo", func(t *testing.T) {
		a := assembler.Assemble(nil, "x")
		b := assembler.Assemble([]domain.Message{{Role: domain.RoleUser, Content: "y"}}, "z")
		if a[0].Content != b[0].Content {
			t.Fatalf("system prompt must not depend on history")
		}
		if a[0].Content != financialSystemPrompt {
			t.Fatalf("unexpected system prompt")
		}
	})
}
