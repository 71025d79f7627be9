package main

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"fin-assist/internal/config"
	"fin-assist/internal/history"
	apihttp "fin-assist/internal/http"
	"fin-assist/internal/ingest"
	"fin-assist/internal/llm"
	"fin-assist/internal/retrieval"
	"fin-assist/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	corpus, err := retrieval.NewCorpus(cfg.CorpusFile)
	if err != nil {
		logger.Fatal("corpus init", zap.Error(err))
	}
	logger.Info("corpus loaded", zap.Int("documents", corpus.Len()))

	store := history.NewFileStore(cfg.HistoryDir, logger)
	retriever := retrieval.NewKeywordRetriever(corpus, cfg.RetrievalTopK)
	transport := ingest.NewHTTPTransport(cfg.TelegramAPIBase, 30*time.Second)
	ingestor := ingest.NewIngestor(transport, logger)
	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMMaxTokens, cfg.LLMTemperature, logger)
	assembler := service.NewContextAssembler(cfg.HistoryWindow)
	chatSvc := service.NewChatService(logger, retriever, corpus, ingestor, llmClient, assembler, store,
		cfg.NewsChannels, cfg.IngestLimit, cfg.ChatContextWindow)

	chatHandler := apihttp.NewChatHandler(logger, chatSvc)
	sessionHandler := apihttp.NewSessionHandler(logger, chatSvc, store)
	router := apihttp.NewRouter(logger, chatHandler, sessionHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
