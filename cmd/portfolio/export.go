package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-portfolio/internal/utils"
)

const (
	defaultExportFile = "playlist.json"
	publishTimeout    = 2 * time.Minute
)

var errNoStore = errors.New("S3 не настроен: укажите aws_bucket_name в конфигурации")

// createExportCommand создает команду export с привязкой к экземпляру приложения
func (app *Application) createExportCommand(ctx context.Context) *cobra.Command {
	var publish, remove bool

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export the playlist to a JSON snapshot",
		Long: `Fetch the playlist and save it as a JSON snapshot.
With --publish the snapshot is also uploaded to S3, --delete removes the published snapshot.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if remove {
				return app.deletePublished(ctx)
			}

			path := filepath.Join(app.Config.ExportDir, defaultExportFile)
			if len(args) == 1 {
				path = args[0]
			}
			return app.exportPlaylist(ctx, path, publish)
		},
	}
	cmd.Flags().BoolVarP(&publish, "publish", "p", false, "upload the snapshot to S3")
	cmd.Flags().BoolVar(&remove, "delete", false, "delete the published snapshot from S3")

	return cmd
}

func (app *Application) exportPlaylist(ctx context.Context, path string, publish bool) error {
	if publish && !app.Exporter.HasStore() {
		return errNoStore
	}

	p, err := app.fetchPlaylist(ctx, "")
	if err != nil {
		return err
	}

	snapshot := app.Exporter.NewSnapshot(p, app.Client.URL())
	if err := app.Exporter.WriteFile(path, snapshot); err != nil {
		return fmt.Errorf("ошибка сохранения снимка: %w", err)
	}
	size := int64(0)
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	fmt.Printf("💾 Снимок сохранён: %s (треков: %d, %s)\n", path, p.Len(), utils.FormatFileSize(size))

	if !publish {
		return nil
	}

	uploadCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	fmt.Printf("📤 Публикуем снимок в S3:\n")
	fmt.Printf("   Бакет: %s\n", app.Config.AwsBucketName)
	fmt.Printf("   Ключ: %s\n", app.Config.ExportKey)

	url, err := app.Exporter.Publish(uploadCtx, app.Config.ExportKey, snapshot)
	if err != nil {
		return fmt.Errorf("ошибка публикации снимка: %w", err)
	}

	fmt.Printf("✅ Снимок опубликован!\n")
	fmt.Printf("   URL: %s\n", url)
	return nil
}

func (app *Application) deletePublished(ctx context.Context) error {
	if !app.Exporter.HasStore() {
		return errNoStore
	}

	fmt.Printf("🗑️  Удаляем снимок из S3: %s\n", app.Config.ExportKey)
	if err := app.Exporter.Unpublish(ctx, app.Config.ExportKey); err != nil {
		return fmt.Errorf("ошибка удаления снимка: %w", err)
	}

	fmt.Println("✅ Снимок удалён")
	return nil
}
