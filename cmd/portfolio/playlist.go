package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-portfolio/internal/music"
	"github.com/hazadus/go-portfolio/internal/playlist"
	"github.com/hazadus/go-portfolio/internal/utils"
)

// createPlaylistCommand создает команду playlist с привязкой к экземпляру приложения
func (app *Application) createPlaylistCommand(ctx context.Context) *cobra.Command {
	var snapshot string

	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Show the playlist",
		Long:  `Fetch the playlist from the backend (or read an exported snapshot) and print its tracks.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.showPlaylist(ctx, snapshot)
		},
	}
	cmd.Flags().StringVarP(&snapshot, "snapshot", "s", "", "read the playlist from an exported snapshot file")

	return cmd
}

func (app *Application) showPlaylist(ctx context.Context, snapshot string) error {
	p, err := app.fetchPlaylist(ctx, snapshot)
	if err != nil {
		return err
	}

	if p.Len() == 0 {
		fmt.Println("📭 Плейлист пуст.")
		return nil
	}

	fmt.Printf("🎶 %s\n", p.Name)
	fmt.Printf("📚 Найдено треков: %d\n\n", p.Len())

	// Выводим заголовок таблицы
	fmt.Printf("%-4s %-24s %-32s %-24s %-6s\n", "№", "Исполнитель", "Название", "Альбом", "Превью")
	fmt.Println(strings.Repeat("-", 96))

	for i, track := range p.Tracks {
		preview := "нет"
		if track.HasPreview() {
			preview = "да"
		}
		fmt.Printf("%-4d %-24s %-32s %-24s %-6s\n",
			i+1,
			utils.TruncateString(track.Artist, 22),
			utils.TruncateString(track.Name, 30),
			utils.TruncateString(track.Album, 22),
			preview)
	}

	fmt.Println()
	fmt.Println("💡 Используйте 'portfolio play [ID трека]' для воспроизведения")
	return nil
}

// fetchPlaylist загружает плейлист и выводит понятное сообщение при ошибке
func (app *Application) fetchPlaylist(ctx context.Context, snapshot string) (*playlist.Playlist, error) {
	source := app.playlistSource(snapshot)

	if snapshot == "" {
		fmt.Printf("🌐 Загружаем плейлист: %s\n", app.Client.URL())
	} else {
		fmt.Printf("📂 Читаем снимок: %s\n", snapshot)
	}

	p, err := source.GetPlaylist(ctx)
	if err != nil {
		fmt.Printf("❌ %s\n", music.Describe(err))
		return nil, fmt.Errorf("ошибка загрузки плейлиста: %w", err)
	}
	return p, nil
}
