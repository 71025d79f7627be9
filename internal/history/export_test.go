package history

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"fin-assist/internal/domain"
)

func TestExportText(t *testing.T) {
	messages := []domain.Message{
		{Role: domain.RoleUser, Content: "Курс доллара", Timestamp: "10:00"},
		{
			Role:      domain.RoleAssistant,
			Content:   "55-60 руб",
			Timestamp: "10:01",
			Sources: []domain.Document{
				{Text: "news1", Link: "http://x"},
				{Text: "news2", Link: "http://y"},
			},
		},
		{Role: domain.RoleUser, Content: "Спасибо", Timestamp: "10:02"},
	}

	text := ExportText(messages)

	if !strings.Contains(text, "ИСТОРИЯ ДИАЛОГА ФИНАНСОВОГО АССИСТЕНТА") {
		t.Fatalf("missing header:\n%s", text)
	}
	if !strings.Contains(text, "Количество сообщений: 3") {
		t.Fatalf("missing message count:\n%s", text)
	}

	// Cada contenido aparece exactamente una vez y en el orden original.
	for _, content := range []string{"Курс доллара", "55-60 руб", "Спасибо"} {
		if strings.Count(text, content) != 1 {
			t.Fatalf("expected %q exactly once:\n%s", content, text)
		}
	}
	first := strings.Index(text, "Курс доллара")
	second := strings.Index(text, "55-60 руб")
	third := strings.Index(text, "Спасибо")
	if !(first < second && second < third) {
		t.Fatalf("contents out of order: %d %d %d", first, second, third)
	}

	if !strings.Contains(text, "[1] ПОЛЬЗОВАТЕЛЬ (10:00)") {
		t.Fatalf("missing user block header:\n%s", text)
	}
	if !strings.Contains(text, "[2] АССИСТЕНТ (10:01)") {
		t.Fatalf("missing assistant block header:\n%s", text)
	}

	// Las fuentes del asistente se listan como pares texto - link.
	if !strings.Contains(text, "• news1 - http://x") || !strings.Contains(text, "• news2 - http://y") {
		t.Fatalf("missing sources:\n%s", text)
	}
}

func TestExportJSON(t *testing.T) {
	messages := sampleHistory()

	data, err := ExportJSON(messages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// El export es la secuencia cruda, sin sobre de metadatos.
	var decoded []domain.Message
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not a bare message array: %v", err)
	}
	if !reflect.DeepEqual(decoded, messages) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, messages)
	}
}
