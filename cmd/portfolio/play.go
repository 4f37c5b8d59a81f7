package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-portfolio/internal/music"
	"github.com/hazadus/go-portfolio/internal/player"
	"github.com/hazadus/go-portfolio/internal/playlist"
	"github.com/hazadus/go-portfolio/internal/utils"
)

const volumeStep = 0.1

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand(ctx context.Context) *cobra.Command {
	var snapshot string

	cmd := &cobra.Command{
		Use:   "play [track-id]",
		Short: "Play a track preview",
		Long: `Play a track preview by its ID or its number in the playlist.
Without arguments the first track with a preview is played.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			trackID := ""
			if len(args) == 1 {
				trackID = args[0]
			}
			return app.playTrack(ctx, trackID, snapshot)
		},
	}
	cmd.Flags().StringVarP(&snapshot, "snapshot", "s", "", "read the playlist from an exported snapshot file")

	return cmd
}

// enableRawMode включает режим raw для терминала (без буферизации и echo)
func enableRawMode() {
	cmd := exec.Command("stty", "-echo", "-icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run()
}

// disableRawMode восстанавливает нормальный режим терминала
func disableRawMode() {
	cmd := exec.Command("stty", "echo", "icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run()
}

// selectTrack находит трек по ID или номеру в плейлисте.
// Пустой ID выбирает первый трек с превью.
func selectTrack(p *playlist.Playlist, trackID string) (playlist.Track, error) {
	if trackID == "" {
		for _, track := range p.Tracks {
			if track.HasPreview() {
				return track, nil
			}
		}
		return playlist.Track{}, errors.New("в плейлисте нет треков с превью")
	}

	track, err := p.TrackByID(trackID)
	if err != nil {
		n, convErr := strconv.Atoi(trackID)
		if convErr != nil || n < 1 || n > p.Len() {
			return playlist.Track{}, err
		}
		track = &p.Tracks[n-1]
	}

	if !track.HasPreview() {
		return playlist.Track{}, music.ErrNoPreview
	}
	return *track, nil
}

func (app *Application) playTrack(ctx context.Context, trackID, snapshot string) error {
	p, err := app.fetchPlaylist(ctx, snapshot)
	if err != nil {
		return err
	}

	track, err := selectTrack(p, trackID)
	if err != nil {
		return fmt.Errorf("ошибка поиска трека: %w", err)
	}

	controller := app.newController(app.playlistSource(snapshot))
	defer controller.Close()
	controller.LoadPlaylist(p)

	printTrack(track)

	if err := controller.PlayTrack(ctx, track); err != nil {
		return fmt.Errorf("ошибка запуска воспроизведения: %w", err)
	}

	playCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Printf("🎮 Управление:\n")
		fmt.Printf("   [Пробел] - пауза/воспроизведение\n")
		fmt.Printf("   [n/p] - следующий/предыдущий трек\n")
		fmt.Printf("   [+/-] - громкость\n")
		fmt.Printf("   [q] или [Ctrl+C] - остановить и выйти\n")
		fmt.Println()

		// Включаем raw режим для чтения одиночных клавиш
		enableRawMode()
		defer disableRawMode()

		go handleKeys(playCtx, controller, cancel)
	}

	// Главный цикл обработки событий
	for {
		ev, ok := controller.WaitEvent(playCtx)
		if !ok {
			fmt.Println("\n⏹️  Воспроизведение остановлено")
			return nil
		}

		switch ev.Type {
		case player.EventTimeUpdate, player.EventDurationKnown:
			displayProgress(controller.Snapshot())
		case player.EventEnded:
			fmt.Println("\n✅ Воспроизведение завершено")
			return nil
		case player.EventLoadError:
			return fmt.Errorf("ошибка воспроизведения: %w", ev.Err)
		}
	}
}

// handleKeys читает одиночные клавиши и управляет воспроизведением
func handleKeys(ctx context.Context, controller *music.Controller, stop context.CancelFunc) {
	reader := bufio.NewReader(os.Stdin)
	for {
		char, err := reader.ReadByte()
		if err != nil {
			return
		}

		switch char {
		case ' ':
			_ = controller.TogglePlayPause(ctx)
			displayProgress(controller.Snapshot())
		case 'n', 'p':
			action := controller.Next
			if char == 'p' {
				action = controller.Previous
			}
			if err := action(ctx); err != nil {
				fmt.Printf("\r\033[K⚠️  %v\n", err)
				continue
			}
			if state := controller.Snapshot(); state.CurrentTrack != nil {
				fmt.Printf("\r\033[K")
				printTrack(*state.CurrentTrack)
			}
		case '+', '=':
			controller.SetVolume(controller.Snapshot().Volume + volumeStep)
			displayProgress(controller.Snapshot())
		case '-':
			controller.SetVolume(controller.Snapshot().Volume - volumeStep)
			displayProgress(controller.Snapshot())
		case 'q':
			stop()
			return
		}
	}
}

func printTrack(track playlist.Track) {
	fmt.Printf("🎵 Сейчас играет:\n")
	fmt.Printf("   ID: %s\n", track.ID)
	fmt.Printf("   Исполнитель: %s\n", track.Artist)
	fmt.Printf("   Название: %s\n", track.Name)
	if track.Album != "" {
		fmt.Printf("   Альбом: %s\n", track.Album)
	}
	if track.SpotifyURL != "" {
		fmt.Printf("   Spotify: %s\n", track.SpotifyURL)
	}
	fmt.Println()
}

// displayProgress отображает прогресс воспроизведения
func displayProgress(state music.State) {
	statusIcon := "▶️"
	if !state.IsPlaying {
		statusIcon = "⏸️"
	}

	fmt.Printf("\r\033[K%s  %s / %s | %.0f%% | 🔊 %d%%",
		statusIcon,
		utils.FormatDuration(state.CurrentTime),
		utils.FormatDuration(state.Duration),
		utils.Progress(state.CurrentTime, state.Duration)*100,
		int(state.Volume*100+0.5))
}
