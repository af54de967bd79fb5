package config

import (
	"os"
	"strconv"
	"time"

	"github.com/backsoul/partygames/pkg/engine"
	"github.com/backsoul/partygames/pkg/logger"
	"github.com/backsoul/partygames/pkg/models"
	"github.com/joho/godotenv"
)

// Config agrupa la configuración del servidor
type Config struct {
	HTTPAddr      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ContentFile   string
	NodeID        string
	LogLevel      string

	// TickRate es la cantidad de ticks por segundo de cada partida
	TickRate int
	// BroadcastRate es la cantidad de eventos de timer por segundo
	BroadcastRate int
	AuthorityTTL  time.Duration
	SubmitRate    float64
	SubmitBurst   int

	Settings map[models.Variant]engine.Settings
}

// Load carga el archivo .env si existe y lee las variables de entorno
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debugf("📄 Sin archivo .env, usando variables de entorno: %v", err)
	} else {
		logger.Info("📄 Variables de entorno cargadas desde .env")
	}

	cfg := &Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		ContentFile:   getEnv("CONTENT_FILE", ""),
		NodeID:        getEnv("NODE_ID", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		TickRate:      getEnvInt("TICK_RATE", 20),
		BroadcastRate: getEnvInt("BROADCAST_RATE", 4),
		AuthorityTTL:  getEnvDuration("AUTHORITY_TTL", 5*time.Second),
		SubmitRate:    getEnvFloat("SUBMIT_RATE", 5),
		SubmitBurst:   getEnvInt("SUBMIT_BURST", 10),
		Settings:      make(map[models.Variant]engine.Settings),
	}

	if cfg.TickRate <= 0 {
		cfg.TickRate = 20
	}
	if cfg.BroadcastRate <= 0 || cfg.BroadcastRate > cfg.TickRate {
		cfg.BroadcastRate = cfg.TickRate
	}

	trivia := engine.DefaultSettings(models.VariantTrivia)
	trivia.Intro = getEnvDuration("TRIVIA_INTRO", trivia.Intro)
	trivia.Question = getEnvDuration("TRIVIA_QUESTION", trivia.Question)
	trivia.Reveal = getEnvDuration("TRIVIA_REVEAL", trivia.Reveal)
	trivia.MaxRounds = getEnvInt("TRIVIA_QUESTIONS", trivia.MaxRounds)
	trivia.Points = getEnvInt("TRIVIA_POINTS", trivia.Points)
	trivia.TimeBonus = getEnvInt("TRIVIA_TIME_BONUS", trivia.TimeBonus)
	cfg.Settings[models.VariantTrivia] = trivia

	deduction := engine.DefaultSettings(models.VariantDeduction)
	deduction.Intro = getEnvDuration("DEDUCTION_INTRO", deduction.Intro)
	deduction.Answer = getEnvDuration("DEDUCTION_ANSWER", deduction.Answer)
	deduction.Voting = getEnvDuration("DEDUCTION_VOTING", deduction.Voting)
	deduction.Results = getEnvDuration("DEDUCTION_RESULTS", deduction.Results)
	deduction.MaxRounds = getEnvInt("DEDUCTION_ROUNDS", deduction.MaxRounds)
	cfg.Settings[models.VariantDeduction] = deduction

	namecraft := engine.DefaultSettings(models.VariantNameCraft)
	namecraft.Intro = getEnvDuration("NAMECRAFT_INTRO", namecraft.Intro)
	namecraft.ModeSelection = getEnvDuration("NAMECRAFT_MODE_SELECTION", namecraft.ModeSelection)
	namecraft.WordSelection = getEnvDuration("NAMECRAFT_WORD_SELECTION", namecraft.WordSelection)
	namecraft.AnswerCreation = getEnvDuration("NAMECRAFT_ANSWER_CREATION", namecraft.AnswerCreation)
	namecraft.Selection = getEnvDuration("NAMECRAFT_SELECTION", namecraft.Selection)
	namecraft.Voting = getEnvDuration("NAMECRAFT_VOTING", namecraft.Voting)
	namecraft.Results = getEnvDuration("NAMECRAFT_RESULTS", namecraft.Results)
	namecraft.MaxRounds = getEnvInt("NAMECRAFT_ROUNDS", namecraft.MaxRounds)
	cfg.Settings[models.VariantNameCraft] = namecraft

	return cfg
}

// TickInterval devuelve la duración de un tick
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// BroadcastEvery devuelve cada cuántos ticks se publica el timer
func (c *Config) BroadcastEvery() int {
	return c.TickRate / c.BroadcastRate
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logger.Warningf("⚠️ %s inválido (%q), usando %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logger.Warningf("⚠️ %s inválido (%q), usando %v", key, value, defaultValue)
		return defaultValue
	}
	return f
}

// getEnvDuration acepta "30s", "1m" o un número entero de segundos
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	logger.Warningf("⚠️ %s inválido (%q), usando %s", key, value, defaultValue)
	return defaultValue
}
