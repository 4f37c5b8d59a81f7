// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath путь к файлу конфигурации по умолчанию
const DefaultPath = "~/.portfolio.yaml"

// Переменные окружения, переопределяющие конфигурацию
const (
	EnvAPIURL   = "PORTFOLIO_API_URL"
	EnvLogLevel = "PORTFOLIO_LOG_LEVEL"
)

// Значения по умолчанию
const (
	DefaultAPIURL         = "http://localhost:3000"
	DefaultRequestTimeout = 30 * time.Second
	DefaultVolume         = 0.7
	DefaultLogLevel       = "info"
	DefaultExportKey      = "portfolio/playlist.json"
	DefaultExportDir      = "~/Downloads"
	DefaultContentFile    = "~/.portfolio-content.yaml"
)

// Config структура для хранения конфигурации приложения
type Config struct {
	APIURL         string        `yaml:"api_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ContentFile    string        `yaml:"content_file"`
	Volume         float64       `yaml:"volume"`
	LogLevel       string        `yaml:"log_level"`
	ExportDir      string        `yaml:"export_dir"`
	ExportKey      string        `yaml:"export_key"`

	AwsBucketName string `yaml:"aws_bucket_name"`
	AwsAccessKey  string `yaml:"aws_access_key"`
	AwsSecretKey  string `yaml:"aws_secret_key"`
	AwsRegion     string `yaml:"aws_region"`
	AwsEndpoint   string `yaml:"aws_endpoint"`
}

// Default возвращает конфигурацию по умолчанию (тильда не раскрыта)
func Default() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		RequestTimeout: DefaultRequestTimeout,
		ContentFile:    DefaultContentFile,
		Volume:         DefaultVolume,
		LogLevel:       DefaultLogLevel,
		ExportDir:      DefaultExportDir,
		ExportKey:      DefaultExportKey,
	}
}

// HasS3 возвращает true, если настроено хранилище для экспорта
func (c *Config) HasS3() bool {
	return c.AwsBucketName != ""
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Отсутствующий файл не ошибка: используются значения по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := expandHome(filePath, home)

	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}

	applyEnv(&config)

	// Заполняем значения, обнулённые в файле
	if config.APIURL == "" {
		config.APIURL = DefaultAPIURL
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}
	if config.ExportDir == "" {
		config.ExportDir = DefaultExportDir
	}
	if config.ExportKey == "" {
		config.ExportKey = DefaultExportKey
	}
	if config.Volume < 0 || config.Volume > 1 {
		return nil, fmt.Errorf("громкость должна быть в диапазоне 0..1, получено %v", config.Volume)
	}

	// Раскрываем тильду в путях
	config.ExportDir = expandHome(config.ExportDir, home)
	config.ContentFile = expandHome(config.ContentFile, home)

	return &config, nil
}

func applyEnv(config *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		config.APIURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.LogLevel = v
	}
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~") {
		return home + path[1:]
	}
	return path
}
