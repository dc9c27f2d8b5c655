package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/4lbertR/CueWave/internal/library"
)

// createRemoveCommand создает команду remove с привязкой к экземпляру приложения
func (app *Application) createRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [deck] [id]",
		Short: "Remove a track from a deck playlist",
		Long:  `Remove a track from the playlist of deck a or b by its ID or an ID prefix. The audio file itself is kept.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.removeTrack(args[0], args[1])
		},
	}
}

func (app *Application) removeTrack(deckName, id string) error {
	deck, err := parseDeck(deckName)
	if err != nil {
		return err
	}

	// Достаточно начала идентификатора, как в выводе list
	var found *library.TrackMetadata
	for _, track := range app.Decks.Playlist(deck) {
		if track.ID == id || (id != "" && strings.HasPrefix(track.ID, id)) {
			found = &track
			break
		}
	}
	if found == nil {
		fmt.Printf("❌ Ошибка: трека %s нет в плейлисте деки %s\n", id, deck)
		return nil
	}

	fmt.Printf("🗑️  Удаляем трек с деки %s: %s\n", deck, found.DisplayName())
	app.Decks.Remove(deck, found.ID)

	if err := app.SaveDecks(); err != nil {
		return fmt.Errorf("ошибка сохранения плейлистов: %w", err)
	}

	fmt.Println("✅ Трек успешно удален из плейлиста")
	return nil
}
