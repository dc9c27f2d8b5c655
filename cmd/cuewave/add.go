package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/4lbertR/CueWave/internal/library"
	"github.com/4lbertR/CueWave/internal/utils"
)

// createAddCommand создает команду add с привязкой к экземпляру приложения
func (app *Application) createAddCommand(ctx context.Context) *cobra.Command {
	var upload bool

	cmd := &cobra.Command{
		Use:   "add [deck] [file path or URL]",
		Short: "Add a track to a deck playlist",
		Long: `Add a local audio file (mp3, ogg, wav) or an http(s) URL to the playlist of deck a or b.
With --upload the file is first uploaded to the configured S3 bucket.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			// Создаем контекст с таймаутом для загрузки (10 минут)
			addCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()
			return app.addTrack(addCtx, args[0], args[1], upload)
		},
	}
	cmd.Flags().BoolVarP(&upload, "upload", "u", false, "upload the file to S3 before adding")

	return cmd
}

func (app *Application) addTrack(ctx context.Context, deckName, source string, upload bool) error {
	deck, err := parseDeck(deckName)
	if err != nil {
		return err
	}
	if !library.Supported(source) {
		return fmt.Errorf("%w: %s", library.ErrUnsupportedFormat, source)
	}

	var meta library.TrackMetadata
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if meta, err = app.Extractor.DescribeURL(source); err != nil {
			return err
		}
	} else {
		if meta, err = app.Extractor.Describe(source); err != nil {
			return err
		}
		if upload {
			if meta.Location, err = app.uploadToS3(ctx, meta); err != nil {
				return err
			}
		}
	}

	meta, added := app.Decks.Add(deck, meta)
	if !added {
		fmt.Printf("ℹ️  Трек уже есть в плейлисте деки %s: %s\n", deck, meta.DisplayName())
		return nil
	}

	if err := app.SaveDecks(); err != nil {
		return fmt.Errorf("ошибка сохранения плейлистов: %w", err)
	}

	app.Logger.Info("трек добавлен",
		zap.Stringer("deck", deck),
		zap.String("id", meta.ID),
		zap.String("location", meta.Location))
	fmt.Printf("✅ Трек добавлен на деку %s: %s\n", deck, meta.DisplayName())
	fmt.Printf("   ID: %s\n", meta.ID)
	if meta.Length > 0 {
		fmt.Printf("   Продолжительность: %s\n", utils.FormatDurationFromSeconds(meta.Length))
	}
	fmt.Printf("\n📦 Плейлисты сохранены в %s\n", app.Config.LibraryFile)
	return nil
}

// uploadToS3 загружает файл трека в бакет с отображением прогресса
func (app *Application) uploadToS3(ctx context.Context, meta library.TrackMetadata) (string, error) {
	if app.Resolver.Bucket == nil {
		return "", library.ErrNoBucket
	}

	file, err := os.Open(meta.Location)
	if err != nil {
		return "", fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	key := filepath.Base(meta.Location)

	fmt.Printf("📤 Загружаем файл в S3:\n")
	fmt.Printf("   Файл: %s\n", meta.Location)
	fmt.Printf("   Размер: %s\n", utils.FormatFileSize(meta.FileSize))
	fmt.Printf("   Бакет: %s\n", app.Resolver.Bucket.Name())
	fmt.Println()

	startTime := time.Now()
	reader := &ProgressReader{
		Reader: file,
		OnProgress: func(bytesRead int64) {
			if meta.FileSize <= 0 {
				return
			}
			elapsed := time.Since(startTime)
			percentage := float64(bytesRead) / float64(meta.FileSize) * 100
			speed := float64(bytesRead) / max(elapsed.Seconds(), 0.001)
			fmt.Printf("\r📊 Прогресс: %.1f%% | Скорость: %s/s | Прошло: %s",
				percentage,
				utils.FormatFileSize(int64(speed)),
				utils.FormatDuration(elapsed))
		},
	}

	location, err := app.Resolver.Bucket.Upload(ctx, reader, key)
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки файла: %w", err)
	}

	fmt.Printf("\n✅ Файл успешно загружен в S3!\n")
	fmt.Printf("   URL: %s\n", location)
	return location, nil
}
