package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Observ ObservabilityConfig
	Worker WorkerConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	CORSOrigins []string
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

type WorkerConfig struct {
	TimeoutSeconds int
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	workerTimeout, _ := strconv.Atoi(getEnv("WORKER_TIMEOUT_SECONDS", "30"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "4000"),
			Env:  getEnv("ENV", "development"),
			CORSOrigins: strings.Split(
				getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001,http://localhost:3002"), ","),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "shop"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "secret_ecom"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		Worker: WorkerConfig{
			TimeoutSeconds: workerTimeout,
		},
	}

	log.Printf("Config loaded: env=%s, port=%s", cfg.Server.Env, cfg.Server.Port)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
