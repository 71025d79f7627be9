package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fin-assist/internal/domain"
)

// ExportText produce un reporte de texto legible y determinista del
// historial: cabecera, luego un bloque por mensaje en orden original.
// No esta pensado para re-importarse.
func ExportText(messages []domain.Message) string {
	var lines []string
	lines = append(lines,
		"=== ИСТОРИЯ ДИАЛОГА ФИНАНСОВОГО АССИСТЕНТА ===",
		fmt.Sprintf("Экспортировано: %s", time.Now().Format("2006-01-02 15:04:05")),
		fmt.Sprintf("Количество сообщений: %d", len(messages)),
		strings.Repeat("=", 50),
		"",
	)

	for i, message := range messages {
		role := "АССИСТЕНТ"
		if message.Role == domain.RoleUser {
			role = "ПОЛЬЗОВАТЕЛЬ"
		}

		lines = append(lines,
			fmt.Sprintf("[%d] %s (%s)", i+1, role, message.Timestamp),
			strings.Repeat("-", 30),
			message.Content,
		)

		if message.Role == domain.RoleAssistant && len(message.Sources) > 0 {
			lines = append(lines, "", "ИСТОЧНИКИ:")
			for _, source := range message.Sources {
				lines = append(lines, fmt.Sprintf("• %s - %s", source.Text, source.Link))
			}
		}

		lines = append(lines, "", "")
	}

	return strings.Join(lines, "\n")
}

// ExportJSON serializa el historial crudo, sin sobre de metadatos.
// Es una forma distinta a la de los archivos de sesion persistidos.
func ExportJSON(messages []domain.Message) ([]byte, error) {
	return json.MarshalIndent(messages, "", "  ")
}
