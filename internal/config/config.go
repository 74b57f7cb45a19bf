// Package config loads application settings from the YAML file pointed to by
// CONFIG_PATH, with environment-variable overrides handled by cleanenv.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the top-level settings structure.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	AMQPConnection          `yaml:"amqp_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	OpenAI                  `yaml:"openai"`
	GenerationLimit         `yaml:"generation_limit"`
}

// HTTPServer holds listener settings.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection holds cache settings.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env-default:"localhost:6379"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// AMQPConnection holds the event-bus settings. An empty URL disables
// publishing.
type AMQPConnection struct {
	AMQPURL  string `yaml:"amqp_url" env:"AMQP_URL"`
	Exchange string `yaml:"exchange" env-default:"storyverse.events"`
}

// JWTToken holds the signing secret and token lifetime.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// OpenAI holds the generation provider settings.
type OpenAI struct {
	APIKey      string `yaml:"api_key" env:"OPENAI_API_KEY"`
	ChatModel   string `yaml:"chat_model" env-default:"gpt-4o"`
	SpeechVoice string `yaml:"speech_voice" env-default:"nova"`
}

// GenerationLimit configures the per-user story-generation limiter.
type GenerationLimit struct {
	Window time.Duration `yaml:"window" env-default:"24h"`
}

// MustLoad reads the config from CONFIG_PATH and exits the process if that
// fails.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
