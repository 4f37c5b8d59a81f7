package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hazadus/go-portfolio/internal/config"
	"github.com/hazadus/go-portfolio/internal/contact"
	"github.com/hazadus/go-portfolio/internal/export"
	"github.com/hazadus/go-portfolio/internal/logging"
	"github.com/hazadus/go-portfolio/internal/music"
	"github.com/hazadus/go-portfolio/internal/player"
	"github.com/hazadus/go-portfolio/internal/playlist"
	"github.com/hazadus/go-portfolio/internal/portfolio"
	"github.com/hazadus/go-portfolio/internal/s3"
)

// tuiLogFile куда пишутся логи, пока терминал занят интерфейсом
const tuiLogFile = "portfolio.log"

// Application хранит зависимости, общие для всех команд
type Application struct {
	ConfigPath string
	Verbose    bool

	Config    *config.Config
	Logger    *zap.Logger
	Content   portfolio.Content
	Client    *playlist.Client
	Exporter  *export.Exporter
	Submitter *contact.Submitter

	// newAudio создает плеер; в тестах подменяется
	newAudio func() player.Audio
}

// setup загружает конфигурацию и создает зависимости приложения.
// logToFile перенаправляет логи в файл во временном каталоге.
func (app *Application) setup(logToFile bool) error {
	cfg, err := config.LoadConfig(app.ConfigPath)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	app.Config = cfg

	opts := logging.Options{Level: cfg.LogLevel, Verbose: app.Verbose}
	if logToFile {
		opts.OutputPaths = []string{filepath.Join(os.TempDir(), tuiLogFile)}
	}
	logger, err := logging.New(opts)
	if err != nil {
		return err
	}
	app.Logger = logger

	content, err := portfolio.Load(cfg.ContentFile)
	if err != nil {
		return err
	}
	app.Content = content

	client, err := playlist.New(playlist.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.RequestTimeout,
	}, playlist.WithLogger(logger.Named("playlist")))
	if err != nil {
		return fmt.Errorf("ошибка создания клиента плейлиста: %w", err)
	}
	app.Client = client

	// Без бакета экспорт работает только с локальными файлами
	var store export.ObjectStore
	if cfg.HasS3() {
		uploader, err := s3.NewUploader(&s3.Config{
			Region:     cfg.AwsRegion,
			AccessKey:  cfg.AwsAccessKey,
			SecretKey:  cfg.AwsSecretKey,
			Endpoint:   cfg.AwsEndpoint,
			BucketName: cfg.AwsBucketName,
		})
		if err != nil {
			return fmt.Errorf("ошибка создания S3 uploader: %w", err)
		}
		store = uploader
	}
	app.Exporter = export.NewExporter(store, logger.Named("export"))

	app.Submitter = contact.NewSubmitter(contact.LogSender{Logger: logger.Named("contact")}, logger)

	logger.Debug("Приложение инициализировано",
		zap.String("api_url", cfg.APIURL),
		zap.Bool("s3", cfg.HasS3()),
	)
	return nil
}

// playlistSource возвращает источник плейлиста: снимок из файла или бэкенд
func (app *Application) playlistSource(snapshot string) music.PlaylistSource {
	if snapshot != "" {
		return export.FileSource{Path: snapshot}
	}
	return app.Client
}

// newController создает контроллер воспроизведения с громкостью из конфигурации
func (app *Application) newController(source music.PlaylistSource) *music.Controller {
	var audio player.Audio
	if app.newAudio != nil {
		audio = app.newAudio()
	} else {
		audio = player.NewBeepPlayer(app.Logger.Named("player"))
	}

	controller := music.NewController(audio, source, app.Logger.Named("music"))
	controller.SetVolume(app.Config.Volume)
	return controller
}

// Close освобождает ресурсы приложения
func (app *Application) Close() {
	if app.Client != nil {
		_ = app.Client.Close()
	}
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
}
