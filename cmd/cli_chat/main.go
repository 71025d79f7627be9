package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"fin-assist/internal/config"
	"fin-assist/internal/history"
	"fin-assist/internal/ingest"
	"fin-assist/internal/llm"
	"fin-assist/internal/retrieval"
	"fin-assist/internal/service"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	corpus, err := retrieval.NewCorpus(cfg.CorpusFile)
	if err != nil {
		log.Fatal(err)
	}

	store := history.NewFileStore(cfg.HistoryDir, logger)
	retriever := retrieval.NewKeywordRetriever(corpus, cfg.RetrievalTopK)
	transport := ingest.NewHTTPTransport(cfg.TelegramAPIBase, 30*time.Second)
	ingestor := ingest.NewIngestor(transport, logger)
	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMMaxTokens, cfg.LLMTemperature, logger)
	assembler := service.NewContextAssembler(cfg.HistoryWindow)
	chatSvc := service.NewChatService(logger, retriever, corpus, ingestor, llmClient, assembler, store,
		cfg.NewsChannels, cfg.IngestLimit, cfg.ChatContextWindow)

	fmt.Println("💰 Финансовый ассистент")
	fmt.Printf("Документов в базе: %d\n", corpus.Len())
	fmt.Println("Задайте вопрос о финансовых рынках или используйте команды:")
	printCommands()

	for {
		fmt.Print("\nВы > ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if runCommand(ctx, chatSvc, store, line) {
				return
			}
			continue
		}

		_, assistantMsg, err := chatSvc.Answer(ctx, line)
		if err != nil {
			fmt.Printf("Ошибка при обработке вопроса: %v\n", err)
			continue
		}

		fmt.Printf("\nАссистент [%s]:\n%s\n", assistantMsg.Timestamp, assistantMsg.Content)
		if len(assistantMsg.Sources) > 0 {
			fmt.Printf("(источников: %d)\n", len(assistantMsg.Sources))
		}
	}
}

func printCommands() {
	fmt.Println("  /update    — обновить базу новостей")
	fmt.Println("  /summary   — сводка новостей за сегодня")
	fmt.Println("  /save      — сохранить текущую сессию")
	fmt.Println("  /sessions  — список сохранённых сессий")
	fmt.Println("  /load N    — загрузить сессию номер N из списка")
	fmt.Println("  /delete N  — удалить сессию номер N из списка")
	fmt.Println("  /export    — экспортировать диалог в текст")
	fmt.Println("  /clear     — очистить текущий диалог")
	fmt.Println("  /exit      — выход")
}

// runCommand ejecuta un comando del REPL. Devuelve true si hay que salir.
func runCommand(ctx context.Context, chatSvc *service.ChatService, store history.Store, line string) bool {
	fields := strings.Fields(line)
	command := fields[0]

	switch command {
	case "/exit", "/quit":
		fmt.Println("До свидания!")
		return true

	case "/update":
		fmt.Println("Обновление базы данных...")
		count, err := chatSvc.UpdateCorpus(ctx)
		if err != nil && count == 0 {
			fmt.Printf("Произошла ошибка при обновлении базы данных: %v\n", err)
			return false
		}
		if err != nil {
			fmt.Printf("Часть каналов недоступна: %v\n", err)
		}
		fmt.Printf("База данных обновлена, документов: %d\n", count)

	case "/summary":
		fmt.Println("Генерация сводки...")
		_, assistantMsg, err := chatSvc.SummarizeToday(ctx)
		if errors.Is(err, service.ErrNoNewsForDay) {
			fmt.Println("Нет новостей за сегодня. Обновите базу данных")
			return false
		}
		if err != nil {
			fmt.Printf("Произошла ошибка при генерации сводки: %v\n", err)
			return false
		}
		fmt.Printf("\nАссистент [%s]:\n%s\n", assistantMsg.Timestamp, assistantMsg.Content)

	case "/save":
		path, err := chatSvc.SaveSession()
		if errors.Is(err, service.ErrEmptyHistory) {
			fmt.Println("Нечего сохранять: диалог пуст")
			return false
		}
		if err != nil {
			fmt.Printf("Ошибка сохранения: %v\n", err)
			return false
		}
		fmt.Printf("История сохранена: %s\n", path)

	case "/sessions":
		listSessions(store)

	case "/load":
		summary, ok := pickSession(store, fields)
		if !ok {
			return false
		}
		messages, err := chatSvc.LoadSession(summary.Filename)
		if err != nil {
			fmt.Printf("Ошибка загрузки: %v\n", err)
			return false
		}
		fmt.Printf("Загружена сессия: %s (%d сообщений)\n", summary.SessionName, len(messages))

	case "/delete":
		summary, ok := pickSession(store, fields)
		if !ok {
			return false
		}
		if store.Delete(summary.Filename) {
			fmt.Println("Сессия удалена")
		} else {
			fmt.Println("Ошибка удаления")
		}

	case "/export":
		fmt.Println(history.ExportText(chatSvc.History()))

	case "/clear":
		chatSvc.ClearSession()
		fmt.Println("Диалог очищен")

	default:
		fmt.Println("Неизвестная команда")
		printCommands()
	}

	return false
}

func listSessions(store history.Store) []history.SessionSummary {
	summaries, err := store.List()
	if err != nil {
		fmt.Printf("Ошибка чтения списка сессий: %v\n", err)
		return nil
	}
	if len(summaries) == 0 {
		fmt.Println("Сохранённых сессий нет")
		return nil
	}
	fmt.Println("Сохранённые сессии:")
	for i, s := range summaries {
		fmt.Printf("[%d] %s (%v сообщений, %s)\n", i+1, s.SessionName, s.MessageCount, s.CreatedAt)
	}
	return summaries
}

// pickSession resuelve "/load N" o "/delete N" contra el listado actual.
func pickSession(store history.Store, fields []string) (history.SessionSummary, bool) {
	summaries := listSessions(store)
	if len(summaries) == 0 {
		return history.SessionSummary{}, false
	}
	if len(fields) < 2 {
		fmt.Println("Укажите номер сессии")
		return history.SessionSummary{}, false
	}
	idx, err := strconv.Atoi(fields[1])
	if err != nil || idx < 1 || idx > len(summaries) {
		fmt.Println("Неверный номер сессии")
		return history.SessionSummary{}, false
	}
	return summaries[idx-1], true
}
