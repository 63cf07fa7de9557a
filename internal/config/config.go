package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	// DataPath is the file-backed store location used when no Postgres DSN
	// is configured.
	DataPath string
	// PostgresDSN switches the key/value store to Postgres when set.
	PostgresDSN string

	GeminiModel string

	Dialogue DialogueConfig
	TTS      TTSConfig
}

// DialogueConfig carries interview tuning overrides. Zero values mean "use
// the built-in default".
type DialogueConfig struct {
	MinTurns            int
	MaxFollowups        int
	ShortAnswerLen      int
	FallbackFollowupLen int
}

type TTSConfig struct {
	Model string
	Voice string

	CacheEnabled bool
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UseSSL       bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:        *port,
		Env:         env,
		DataPath:    firstNonEmpty(strings.TrimSpace(os.Getenv("KV_DATA_PATH")), "data/kv_store.json"),
		PostgresDSN: strings.TrimSpace(os.Getenv("KV_PG_DSN")),
		GeminiModel: geminiModel(),
		Dialogue:    loadDialogueConfig(),
		TTS: loadTTSConfig(env),
	}, nil
}

const defaultGeminiModel = "gemini-2.5-flash"

func geminiModel() string {
	return firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_MODEL")), defaultGeminiModel)
}

func loadDialogueConfig() DialogueConfig {
	return DialogueConfig{
		MinTurns:            intEnv("DIALOGUE_MIN_TURNS"),
		MaxFollowups:        intEnv("DIALOGUE_MAX_FOLLOWUPS"),
		ShortAnswerLen:      intEnv("DIALOGUE_SHORT_ANSWER_LEN"),
		FallbackFollowupLen: intEnv("DIALOGUE_FALLBACK_FOLLOWUP_LEN"),
	}
}

func loadTTSConfig(env string) TTSConfig {
	endpoint := resolveCacheEndpoint(env)
	return TTSConfig{
		Model:        strings.TrimSpace(os.Getenv("TTS_MODEL")),
		Voice:        strings.TrimSpace(os.Getenv("TTS_VOICE")),
		CacheEnabled: endpoint != "",
		Endpoint:     endpoint,
		Region:       firstNonEmpty(strings.TrimSpace(os.Getenv("TTS_S3_REGION")), "us-east-1"),
		AccessKey:    firstNonEmpty(strings.TrimSpace(os.Getenv("TTS_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey:    firstNonEmpty(strings.TrimSpace(os.Getenv("TTS_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:       firstNonEmpty(strings.TrimSpace(os.Getenv("TTS_S3_BUCKET")), "deary-tts"),
		UseSSL:       resolveCacheUseSSL(env),
	}
}

func resolveCacheEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("TTS_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("TTS_S3_ENDPOINT"))
}

func resolveCacheUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("TTS_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func intEnv(name string) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
