package service

import (
	"fmt"
	"strings"

	"fin-assist/internal/domain"
)

// financialSystemPrompt es la politica fija que abre todo request de
// completado: idioma de respuesta, formato de citas y verificacion de
// afirmaciones contra las fuentes. Es configuracion, no se deriva del
// historial.
const financialSystemPrompt = `You are a financial assistant AI model designed to provide specific financial predictions based on the latest financial news data.
Your task is to analyze the retrieved financial news articles and generate precise predictions with probable numerical intervals.
Your responses should be in Russian and should include detailed reasoning based on the data provided.
The first line should be a short summary of your answer, and write your very full detailed answer in a line below.
YOU HAVE TO CHECK THE INFORMATION IN QUESTION PROMPT FOR TRUTH, CORRESPONDING WITH THE SOURCES! If it is not truth - tell user that he is not right and provide correct info!
Please, provide links for all cited information in your answer in such markdown way: "[information](link_source_of_information)"

You are having a conversation with the user. Use the conversation history to provide contextual and relevant responses.
If the user refers to previous questions or topics, acknowledge them and build upon the conversation.

Example Prompt:

User:
"Какие прогнозы по курсу акций компании XYZ на следующую неделю?"

Example Response:
"Курс акций XYZ будет находится между 120 и 130 рублей на следующей неделе.

На основе последних [новостей](https://ru.investing.com/equities), курс акций компании XYZ, вероятно, будет находиться в диапазоне от 120 до 130 рублей за акцию на следующей неделе. Это связано с [положительными отчетами о доходах](link_to_info) и [увеличением спроса на продукцию компании](link_to_info)."`

// documentsContext arma el bloque de contexto con el texto y el link de
// cada documento, uno por linea.
func documentsContext(documents []domain.Document) string {
	lines := make([]string, 0, len(documents))
	for _, doc := range documents {
		lines = append(lines, fmt.Sprintf("%s [Link to Info](%s)", doc.Text, doc.Link))
	}
	return strings.Join(lines, "\n")
}

// buildQuestionPrompt embebe los documentos recuperados y la pregunta
// literal del usuario.
func buildQuestionPrompt(documents []domain.Document, question string) string {
	return fmt.Sprintf("Context: %s\n\nQuestion: %s", documentsContext(documents), question)
}

// buildSummaryPrompt arma el prompt de resumen sobre todos los
// documentos de un dia.
func buildSummaryPrompt(documents []domain.Document) string {
	return fmt.Sprintf("Summarize the following news in 3-4 sentences with reference links in text:\n\n%s\n\nSummary:", documentsContext(documents))
}
