// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/4lbertR/CueWave/internal/mixer"
	"github.com/4lbertR/CueWave/internal/utils"
)

// DefaultPath - путь к файлу конфигурации по умолчанию
const DefaultPath = "~/.cuewave/config.yaml"

// Config структура для хранения конфигурации приложения
type Config struct {
	FadeDurationSeconds float64       `yaml:"fade_duration_seconds"`
	TickInterval        time.Duration `yaml:"tick_interval"`
	SampleRate          int           `yaml:"sample_rate"`
	BufferSize          time.Duration `yaml:"buffer_size"`

	DeckAVolume  float64 `yaml:"deck_a_volume"`
	DeckBVolume  float64 `yaml:"deck_b_volume"`
	MasterVolume float64 `yaml:"master_volume"`
	MuteA        bool    `yaml:"mute_a"`
	MuteB        bool    `yaml:"mute_b"`
	MuteMaster   bool    `yaml:"mute_master"`

	LibraryFile string `yaml:"library_file"`
	LogFile     string `yaml:"log_file"`
	LogLevel    string `yaml:"log_level"`

	AwsBucketName string `yaml:"aws_bucket_name"`
	AwsAccessKey  string `yaml:"aws_access_key"`
	AwsSecretKey  string `yaml:"aws_secret_key"`
	AwsRegion     string `yaml:"aws_region"`
	AwsEndpoint   string `yaml:"aws_endpoint"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		FadeDurationSeconds: 1.0,
		TickInterval:        mixer.DefaultTickInterval,
		SampleRate:          44100,
		BufferSize:          100 * time.Millisecond,
		DeckAVolume:         mixer.UnityPosition,
		DeckBVolume:         mixer.UnityPosition,
		MasterVolume:        mixer.UnityPosition,
		LibraryFile:         "~/.cuewave/decks.yaml",
		LogFile:             "~/.cuewave/cuewave.log",
		LogLevel:            "info",
	}
}

// LoadEnv загружает переменные из .env файлов. Отсутствующие файлы пропускаются,
// уже заданные переменные окружения не перезаписываются.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("ошибка чтения %s: %w", file, err)
		}
	}
	return nil
}

// LoadConfig загружает конфигурацию из файла и переменных окружения.
// Отсутствующий файл дает значения по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	path, err := utils.ExpandHome(filePath)
	if err != nil {
		return nil, err
	}

	config := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	// Раскрываем тильду в путях
	if config.LibraryFile, err = utils.ExpandHome(config.LibraryFile); err != nil {
		return nil, err
	}
	if config.LogFile, err = utils.ExpandHome(config.LogFile); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate проверяет значения, которые уходят в микшер
func (c *Config) Validate() error {
	if _, err := mixer.DurationFromSeconds(c.FadeDurationSeconds); err != nil {
		return fmt.Errorf("fade_duration_seconds: %w", err)
	}
	for name, pos := range map[string]float64{
		"deck_a_volume": c.DeckAVolume,
		"deck_b_volume": c.DeckBVolume,
		"master_volume": c.MasterVolume,
	} {
		if err := mixer.ValidatePosition(pos); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate: недопустимое значение %d", c.SampleRate)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer_size: недопустимое значение %v", c.BufferSize)
	}
	return nil
}

// FadeDuration возвращает длительность фейда
func (c *Config) FadeDuration() time.Duration {
	d, err := mixer.DurationFromSeconds(c.FadeDurationSeconds)
	if err != nil {
		return mixer.DefaultFadeDuration
	}
	return d
}

// MixerOptions переводит конфигурацию в настройки микшера
func (c *Config) MixerOptions() mixer.Options {
	opts := mixer.DefaultOptions()
	opts.FadeDuration = c.FadeDuration()
	opts.TickInterval = c.TickInterval
	opts.VolumeA = c.DeckAVolume
	opts.VolumeB = c.DeckBVolume
	opts.MasterVolume = c.MasterVolume
	opts.MuteA = c.MuteA
	opts.MuteB = c.MuteB
	opts.MuteMaster = c.MuteMaster
	return opts
}

// HasS3 сообщает, настроен ли бакет S3
func (c *Config) HasS3() bool {
	return c.AwsBucketName != ""
}

// applyEnv переопределяет значения из переменных окружения
func (c *Config) applyEnv() error {
	var errs []error
	envString("CUEWAVE_LIBRARY_FILE", &c.LibraryFile)
	envString("CUEWAVE_LOG_FILE", &c.LogFile)
	envString("CUEWAVE_LOG_LEVEL", &c.LogLevel)
	envString("AWS_BUCKET_NAME", &c.AwsBucketName)
	envString("AWS_ACCESS_KEY", &c.AwsAccessKey)
	envString("AWS_SECRET_KEY", &c.AwsSecretKey)
	envString("AWS_REGION", &c.AwsRegion)
	envString("AWS_ENDPOINT", &c.AwsEndpoint)

	errs = append(errs,
		envFloat("CUEWAVE_FADE_DURATION_SECONDS", &c.FadeDurationSeconds),
		envFloat("CUEWAVE_DECK_A_VOLUME", &c.DeckAVolume),
		envFloat("CUEWAVE_DECK_B_VOLUME", &c.DeckBVolume),
		envFloat("CUEWAVE_MASTER_VOLUME", &c.MasterVolume),
		envBool("CUEWAVE_MUTE_A", &c.MuteA),
		envBool("CUEWAVE_MUTE_B", &c.MuteB),
		envBool("CUEWAVE_MUTE_MASTER", &c.MuteMaster),
		envDuration("CUEWAVE_TICK_INTERVAL", &c.TickInterval),
		envDuration("CUEWAVE_BUFFER_SIZE", &c.BufferSize),
		envInt("CUEWAVE_SAMPLE_RATE", &c.SampleRate),
	)
	return errors.Join(errs...)
}

func envString(key string, dst *string) {
	if value, ok := os.LookupEnv(key); ok {
		*dst = value
	}
}

func envFloat(key string, dst *float64) error {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("ошибка разбора %s: %w", key, err)
	}
	*dst = v
	return nil
}

func envBool(key string, dst *bool) error {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("ошибка разбора %s: %w", key, err)
	}
	*dst = v
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	v, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("ошибка разбора %s: %w", key, err)
	}
	*dst = v
	return nil
}

func envInt(key string, dst *int) error {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("ошибка разбора %s: %w", key, err)
	}
	*dst = v
	return nil
}
