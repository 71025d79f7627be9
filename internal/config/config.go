package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	HistoryDir string `env:"HISTORY_DIR" envDefault:"data/chat_history"`
	CorpusFile string `env:"CORPUS_FILE" envDefault:"data/telegram_messages.json"`

	LLMAPIKey      string  `env:"LLM_API_KEY,required"`
	LLMBaseURL     string  `env:"LLM_BASE_URL" envDefault:"https://gptunnel.ru/v1"`
	LLMModel       string  `env:"LLM_MODEL" envDefault:"gpt-4o"`
	LLMMaxTokens   int     `env:"LLM_MAX_TOKENS" envDefault:"2000"`
	LLMTemperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.7"`

	TelegramAPIBase string   `env:"TELEGRAM_API_BASE"`
	NewsChannels    []string `env:"NEWS_CHANNELS" envSeparator:"," envDefault:"@finprofit,@omyinvestments,@ecotopor"`
	IngestLimit     int      `env:"INGEST_LIMIT" envDefault:"200"`

	// Ventanas de historial. Se mantienen como dos valores independientes:
	// el ensamblador recorta a 8 y el orquestador pasa los ultimos 10.
	HistoryWindow     int `env:"HISTORY_WINDOW" envDefault:"8"`
	ChatContextWindow int `env:"CHAT_CONTEXT_WINDOW" envDefault:"10"`

	RetrievalTopK int `env:"RETRIEVAL_TOP_K" envDefault:"5"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
