package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/4lbertR/CueWave/internal/library"
)

// createImportCommand создает команду import с привязкой к экземпляру приложения
func (app *Application) createImportCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "import [deck] [directory or s3://bucket/prefix]",
		Short: "Import every supported track from a directory or S3 prefix",
		Long: `Scan a local directory or an S3 prefix and append every mp3, ogg and wav file
to the playlist of deck a or b. Tracks already in the playlist are skipped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.importTracks(ctx, args[0], args[1])
		},
	}
}

func (app *Application) importTracks(ctx context.Context, deckName, source string) error {
	deck, err := parseDeck(deckName)
	if err != nil {
		return err
	}

	var tracks []library.TrackMetadata
	if strings.HasPrefix(source, "s3://") {
		tracks, err = app.scanBucket(ctx, source)
	} else {
		fmt.Printf("🔍 Сканируем каталог %s\n", source)
		tracks, err = app.Extractor.Scan(ctx, source)
	}
	if err != nil {
		return err
	}

	if len(tracks) == 0 {
		fmt.Println("📭 Подходящих треков не найдено")
		return nil
	}

	added := 0
	for _, meta := range tracks {
		if _, ok := app.Decks.Add(deck, meta); ok {
			added++
		}
	}

	if added > 0 {
		if err := app.SaveDecks(); err != nil {
			return fmt.Errorf("ошибка сохранения плейлистов: %w", err)
		}
	}

	app.Logger.Info("импорт завершен",
		zap.Stringer("deck", deck),
		zap.String("source", source),
		zap.Int("found", len(tracks)),
		zap.Int("added", added))
	fmt.Printf("✅ Найдено треков: %d, добавлено на деку %s: %d\n", len(tracks), deck, added)
	return nil
}

// scanBucket перечисляет поддерживаемые объекты под префиксом бакета
func (app *Application) scanBucket(ctx context.Context, location string) ([]library.TrackMetadata, error) {
	bucket, prefix, err := library.ParseS3Location(location)
	if err != nil {
		return nil, err
	}
	if app.Resolver.Bucket == nil {
		return nil, library.ErrNoBucket
	}
	if bucket != app.Resolver.Bucket.Name() {
		return nil, fmt.Errorf("бакет %s не совпадает с настроенным %s", bucket, app.Resolver.Bucket.Name())
	}

	fmt.Printf("🔍 Читаем содержимое s3://%s/%s\n", bucket, prefix)
	objects, err := app.Resolver.Bucket.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var tracks []library.TrackMetadata
	for _, obj := range objects {
		if !library.Supported(obj.Key) {
			continue
		}
		tracks = append(tracks, app.Extractor.DescribeObject(bucket, obj))
	}
	return tracks, nil
}
