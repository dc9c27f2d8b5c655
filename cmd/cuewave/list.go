package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/4lbertR/CueWave/internal/mixer"
	"github.com/4lbertR/CueWave/internal/utils"
)

// createListCommand создает команду list с привязкой к экземпляру приложения
func (app *Application) createListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List both deck playlists",
		Long:  `Display the playlists of deck a and deck b stored in the library file.`,
		Run: func(_ *cobra.Command, _ []string) {
			app.listTracks()
		},
	}
}

func (app *Application) listTracks() {
	if len(app.Decks.DeckA) == 0 && len(app.Decks.DeckB) == 0 {
		fmt.Println("📚 Плейлисты пусты. Добавьте треки с помощью команды 'add' или 'import'.")
		return
	}

	for _, deck := range mixer.Decks {
		playlist := app.Decks.Playlist(deck)
		fmt.Printf("🎚️ Дека %s: треков %d\n\n", deck, len(playlist))
		if len(playlist) == 0 {
			fmt.Println()
			continue
		}

		// Выводим заголовок таблицы
		fmt.Printf("%-3s %-10s %-26s %-30s %-12s %-10s\n",
			"#", "ID", "Исполнитель", "Название", "Длительность", "Размер")
		fmt.Println(strings.Repeat("-", 96))

		for i, track := range playlist {
			duration := "N/A"
			if track.Length > 0 {
				duration = utils.FormatDurationFromSeconds(track.Length)
			}
			fileSize := "N/A"
			if track.FileSize > 0 {
				fileSize = utils.FormatFileSize(track.FileSize)
			}

			fmt.Printf("%-3d %-10s %-26s %-30s %-12s %-10s\n",
				i+1,
				shortID(track.ID),
				utils.TruncateString(track.Artist, 24),
				utils.TruncateString(track.Title, 28),
				duration,
				fileSize)
		}
		fmt.Println()
	}

	fmt.Println("💡 Используйте 'cuewave mix' для запуска микшера")
}

// shortID возвращает начало идентификатора для таблицы
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
