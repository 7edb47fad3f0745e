package config

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvInfo collects per-service settings from .env
type EnvInfo struct {
	// service names
	UploadService   string
	TranscodeWorker string
	APIGateway      string

	// service yaml path
	UploadServiceYAMLPath   string
	TranscodeWorkerYAMLPath string
	APIGatewayYAMLPath      string

	// service log path
	UploadServiceLogPath   string
	TranscodeWorkerLogPath string
	APIGatewayLogPath      string
}

// EnvConfig collects per-service settings
var (
	EnvConfig = initEnv()
	envConfig EnvInfo
	once      sync.Once
	env       string
)

func initEnv() EnvInfo {
	once.Do(func() {
		path, err := GetPath(".env", 5)
		if err != nil {
			log.Printf("Warning: Could not get .env path: %v", err)
		}

		if err := godotenv.Load(path); err != nil {
			log.Printf("Warning: Could not load .env file: %v", err)
		}

		env = os.Getenv("ENV")

		envConfig = EnvInfo{
			UploadService:   getenvDefault("UPLOAD_SERVICE", "upload_service"),
			TranscodeWorker: getenvDefault("TRANSCODE_WORKER", "transcode_worker"),
			APIGateway:      getenvDefault("API_GATEWAY", "api_gateway"),

			UploadServiceYAMLPath:   getenvDefault("UPLOAD_SERVICE_YAML", "./configs"),
			TranscodeWorkerYAMLPath: getenvDefault("TRANSCODE_WORKER_YAML", "./configs"),
			APIGatewayYAMLPath:      getenvDefault("API_GATEWAY_YAML", "./configs"),

			UploadServiceLogPath:   getenvDefault("UPLOAD_SERVICE_LOG", "./log/upload_service"),
			TranscodeWorkerLogPath: getenvDefault("TRANSCODE_WORKER_LOG", "./log/transcode_worker"),
			APIGatewayLogPath:      getenvDefault("API_GATEWAY_LOG", "./log/api_gateway"),
		}
	})

	return envConfig
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// IsProduction check run env
func IsProduction() bool {
	return env == "production"
}

// IsLocal check run env
func IsLocal() bool {
	return env == "local"
}

// LoadConfig loads <serviceName>.yaml from configPath into T,
// expanding ${} placeholders from the environment first.
func LoadConfig[T any](serviceName string, configPath string) T {
	v := viper.New()
	v.SetConfigName(serviceName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("Error loading config file: %v", err)
	}

	rawConfig, err := os.ReadFile(v.ConfigFileUsed())
	if err != nil {
		log.Fatalf("Error reading raw config file: %v", err)
	}

	expandedConfig := os.ExpandEnv(string(rawConfig))

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expandedConfig))); err != nil {
		log.Fatalf("Error reading expanded config: %v", err)
	}

	var cfg T
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("Error unmarshaling config: %v", err)
	}
	return cfg
}

// GetPath use fileName loop maxCount find file path
func GetPath(fileName string, maxCount int) (string, error) {
	path := "./" + fileName

	for i := 0; i < maxCount; i++ {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = "../" + path
	}
	return "", errors.New(fileName + "can't find path ")
}
