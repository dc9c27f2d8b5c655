package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gopxl/beep"
	"go.uber.org/zap"

	"github.com/4lbertR/CueWave/internal/config"
	"github.com/4lbertR/CueWave/internal/library"
	"github.com/4lbertR/CueWave/internal/logger"
	"github.com/4lbertR/CueWave/internal/mixer"
)

// configPathEnv задает путь к файлу конфигурации вместо пути по умолчанию
const configPathEnv = "CUEWAVE_CONFIG"

// Application содержит состояние приложения
type Application struct {
	Config     *config.Config
	ConfigPath string
	Decks      *library.DeckSet
	Resolver   *library.Resolver
	Extractor  *library.Extractor
	Logger     *zap.Logger

	// newOutput создает устройство вывода для движка
	newOutput func(rate beep.SampleRate) (mixer.Output, error)
}

// NewApplication загружает конфигурацию и плейлисты
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	decks := library.NewDeckSet()
	if err := decks.Load(cfg.LibraryFile); err != nil {
		return nil, fmt.Errorf("ошибка загрузки плейлистов: %w", err)
	}

	app := &Application{
		Config:     cfg,
		ConfigPath: configPath,
		Decks:      decks,
		Resolver:   &library.Resolver{BufferSize: library.DefaultBufferSize},
		Extractor:  library.NewExtractor(),
		Logger:     zap.NewNop(),
	}
	app.newOutput = app.speakerOutput

	if cfg.HasS3() {
		bucket, err := library.NewBucket(app.s3Config())
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к S3: %w", err)
		}
		app.Resolver.Bucket = bucket
	}

	return app, nil
}

// initLogger создает журнал. console включает вывод в Stderr.
func (app *Application) initLogger(console bool) error {
	log, err := logger.New(logger.Config{
		Level:      app.Config.LogLevel,
		OutputPath: app.Config.LogFile,
		Console:    console,
	})
	if err != nil {
		return fmt.Errorf("ошибка создания журнала: %w", err)
	}
	app.Logger = log
	return nil
}

func (app *Application) s3Config() *library.S3Config {
	return &library.S3Config{
		Region:     app.Config.AwsRegion,
		AccessKey:  app.Config.AwsAccessKey,
		SecretKey:  app.Config.AwsSecretKey,
		Endpoint:   app.Config.AwsEndpoint,
		BucketName: app.Config.AwsBucketName,
	}
}

// SaveDecks сохраняет плейлисты в файл
func (app *Application) SaveDecks() error {
	return app.Decks.Save(app.Config.LibraryFile)
}

func (app *Application) speakerOutput(rate beep.SampleRate) (mixer.Output, error) {
	return mixer.NewSpeakerOutput(rate, app.Config.BufferSize)
}

// newEngine создает движок и загружает в него плейлисты дек.
// На каждой деке выбирается первый трек.
func (app *Application) newEngine() (*mixer.Engine, error) {
	out, err := app.newOutput(beep.SampleRate(app.Config.SampleRate))
	if err != nil {
		return nil, err
	}

	engine, err := mixer.New(out, app.Config.MixerOptions(), app.Logger)
	if err != nil {
		out.Close()
		return nil, fmt.Errorf("ошибка создания микшера: %w", err)
	}

	for _, id := range mixer.Decks {
		tracks := app.Resolver.Tracks(app.Decks.Playlist(id))
		if err := engine.SetPlaylist(id, tracks); err != nil {
			engine.Close()
			return nil, err
		}
		if len(tracks) > 0 {
			if err := engine.SelectTrack(id, tracks[0]); err != nil {
				engine.Close()
				return nil, err
			}
		}
	}
	return engine, nil
}

func main() {
	// Переменные из .env не перекрывают уже заданные в окружении
	if err := config.LoadEnv(); err != nil {
		fmt.Printf("⚠️  %v\n", err)
	}

	configPath := os.Getenv(configPathEnv)
	if configPath == "" {
		configPath = config.DefaultPath
	}

	app, err := NewApplication(configPath)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := app.createRootCommand(ctx)
	err = rootCmd.Execute()
	_ = app.Logger.Sync()
	if err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}
