package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resto-server/internal/appclient"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog"
)

// Config - конфигурация клиента повара.
type Config struct {
	ServerURL   string `yaml:"server_url" env:"SERVER_URL" env-default:"http://localhost:8080"`
	FeedURL     string `yaml:"feed_url" env:"FEED_URL" env-default:"ws://localhost:8080/ws/orders"`
	AccessToken string `yaml:"access_token" env:"ACCESS_TOKEN" env-required:"true"`
	PushToken   string `yaml:"push_token" env:"PUSH_TOKEN"`
	Platform    string `yaml:"platform" env:"PLATFORM" env-default:"android"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

func loadConfig() (*Config, error) {
	configPath := "chefclient.yml"

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v. Попытка чтения из переменных окружения.", configPath, err)
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
		}
	}
	return &cfg, nil
}

// consoleSound пишет маркер в лог вместо звука. На устройстве его
// заменяет платформенная реализация.
type consoleSound struct {
	logger zerolog.Logger
}

func (s *consoleSound) Play() {
	s.logger.Info().Msg("DING: звук уведомления")
}

// staticTokenSource отдает push токен из конфигурации.
type staticTokenSource struct {
	token string
}

func (s *staticTokenSource) PushToken(ctx context.Context) (string, error) {
	return s.token, nil
}

// alwaysGranted - разрешение считается выданным, если токен настроен.
type alwaysGranted struct {
	configured bool
}

func (p *alwaysGranted) RequestPermission(ctx context.Context) (bool, error) {
	return p.configured, nil
}

// loggedChannel фиксирует создание канала в логе. На устройстве канал
// создает платформенная реализация.
type loggedChannel struct {
	logger zerolog.Logger
}

func (c *loggedChannel) CreateChannel(ctx context.Context, id string) error {
	c.logger.Info().Str("channel", id).Msg("Канал уведомлений создан")
	return nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	logger.Info().Msg("Клиент повара запускается")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registrar := appclient.NewRegistrar(
		cfg.ServerURL,
		cfg.AccessToken,
		cfg.Platform,
		&alwaysGranted{configured: cfg.PushToken != ""},
		&staticTokenSource{token: cfg.PushToken},
		&loggedChannel{logger: logger},
		&http.Client{Timeout: 10 * time.Second},
		logger,
	)

	regCtx, regCancel := context.WithTimeout(ctx, 15*time.Second)
	registered, err := registrar.Register(regCtx)
	regCancel()
	if err != nil {
		logger.Error().Err(err).Msg("Регистрация push токена не удалась, продолжаем без уведомлений")
	} else if !registered {
		logger.Info().Msg("Push уведомления не настроены")
	}

	listener := appclient.NewListener(logger)
	announcer := appclient.NewAnnouncer(&consoleSound{logger: logger}, logger)
	announcer.OnTap(func(b appclient.Banner) {
		logger.Info().Str("banner", b.Title).Msg("Баннер открыт, обновляем список заказов")
	})
	app := appclient.NewApp(listener, announcer, cfg.FeedURL, cfg.AccessToken, logger)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info().Msg("Получен сигнал остановки")
		cancel()
	}()

	if err := app.Run(ctx); err != nil && err != context.Canceled {
		logger.Error().Err(err).Msg("Клиент завершился с ошибкой")
		os.Exit(1)
	}
	logger.Info().Msg("Клиент остановлен")
}
