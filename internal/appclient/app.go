package appclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// tableText печатает номер стола или N/A для заказа на вынос.
func tableText(table *int) string {
	if table == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *table)
}

// feedEvent - событие ленты заказов с сервера (см. realtime.FeedEvent).
type feedEvent struct {
	Type  string `json:"type"`
	Event string `json:"event"`
	Order struct {
		ID          string `json:"id"`
		Number      int64  `json:"number"`
		TableNumber *int   `json:"table_number"`
		TotalCents  int64  `json:"total_cents"`
	} `json:"order"`
}

// App - клиентское приложение повара: слушает push уведомления и
// realtime ленту и показывает баннеры о новых заказах.
type App struct {
	listener  *Listener
	announcer *Announcer
	feedURL   string
	token     string
	logger    zerolog.Logger
}

func NewApp(listener *Listener, announcer *Announcer, feedURL, token string, logger zerolog.Logger) *App {
	return &App{
		listener:  listener,
		announcer: announcer,
		feedURL:   feedURL,
		token:     token,
		logger:    logger.With().Str("component", "App").Logger(),
	}
}

// Listener возвращает слушатель уведомлений для регистрации в платформе.
func (a *App) Listener() *Listener { return a.listener }

// Announcer возвращает баннерный компонент для UI.
func (a *App) Announcer() *Announcer { return a.announcer }

// Run крутит основной цикл: забирает необработанные уведомления и
// показывает их, параллельно держит соединение с лентой заказов.
// Блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	if a.feedURL != "" {
		go a.feedLoop(ctx)
	}

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if notice := a.listener.Consume(); notice != nil {
				a.announcer.Announce(notice.Title, notice.Body)
			}
		}
	}
}

// feedLoop держит WebSocket соединение с лентой заказов,
// переподключаясь при обрывах.
func (a *App) feedLoop(ctx context.Context) {
	retryDelay := 3 * time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		if err := a.consumeFeed(ctx); err != nil && ctx.Err() == nil {
			a.logger.Warn().Err(err).Dur("retry_in", retryDelay).Msg("Соединение с лентой потеряно")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
}

func (a *App) consumeFeed(ctx context.Context) error {
	url := fmt.Sprintf("%s?token=%s", a.feedURL, a.token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial feed: %w", err)
	}
	defer conn.Close()
	a.logger.Info().Msg("Подключено к ленте заказов")

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read feed: %w", err)
		}
		var ev feedEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			a.logger.Warn().Err(err).Msg("Нечитаемое событие ленты, пропущено")
			continue
		}
		if ev.Type != "order_event" {
			continue
		}
		a.logger.Debug().Str("event", ev.Event).Int64("order", ev.Order.Number).Msg("Событие ленты получено")
		if ev.Event == "new_order" {
			a.announcer.Announce(
				fmt.Sprintf("New Order #%d", ev.Order.Number),
				fmt.Sprintf("Table %s - $%d.%02d", tableText(ev.Order.TableNumber), ev.Order.TotalCents/100, ev.Order.TotalCents%100),
			)
		}
	}
}
