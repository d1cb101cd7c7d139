package appclient

import (
	"context"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// Notification - входящее push уведомление, как его отдает платформа устройства.
// ID - идентификатор доставки: платформа может вручить одно и то же
// уведомление нескольким callback'ам, поэтому ID используется для дедупликации.
type Notification struct {
	ID    string
	Title string
	Body  string
	Data  map[string]string
}

// OrderNotice - разобранное уведомление о заказе.
type OrderNotice struct {
	OrderID int64
	Kind    string // "new" или "update"
	Title   string
	Body    string
}

// Максимум запомненных идентификаторов доставки. Дальше старые забываются,
// к этому моменту платформа их уже не повторит.
const seenLimit = 256

// Listener принимает уведомления от платформы, отбрасывает дубли
// и хранит последнее необработанное уведомление до вызова Consume.
type Listener struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	seenSeq []string
	pending *OrderNotice
	logger  zerolog.Logger
}

func NewListener(logger zerolog.Logger) *Listener {
	return &Listener{
		seen:   make(map[string]struct{}),
		logger: logger.With().Str("component", "Listener").Logger(),
	}
}

// OnReceive обрабатывает одно уведомление. Возвращает false, если
// уведомление отброшено (дубль или нечитаемый orderId).
// Если предыдущее уведомление еще не обработано, новое замещает его.
func (l *Listener) OnReceive(n Notification) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n.ID != "" {
		if _, dup := l.seen[n.ID]; dup {
			l.logger.Debug().Str("id", n.ID).Msg("Повторная доставка, уведомление отброшено")
			return false
		}
		l.remember(n.ID)
	}

	orderID, ok := parseOrderID(n.Data["orderId"])
	if !ok {
		l.logger.Warn().Str("id", n.ID).Str("orderId", n.Data["orderId"]).Msg("Уведомление без читаемого orderId отброшено")
		return false
	}

	kind := n.Data["type"]
	if kind == "" {
		kind = "new"
	}

	l.pending = &OrderNotice{
		OrderID: orderID,
		Kind:    kind,
		Title:   n.Title,
		Body:    n.Body,
	}
	return true
}

// ColdStartSource отдает уведомление, запуском по которому открыли
// приложение, если такое было. Реализация зависит от платформы.
type ColdStartSource interface {
	LastNotification(ctx context.Context) (*Notification, error)
}

// CheckColdStart обрабатывает уведомление, из-за которого приложение
// было запущено. Дедупликация по ID защищает от двойного срабатывания,
// когда живая подписка уже отдала то же уведомление.
func (l *Listener) CheckColdStart(ctx context.Context, src ColdStartSource) bool {
	if src == nil {
		return false
	}
	n, err := src.LastNotification(ctx)
	if err != nil {
		l.logger.Warn().Err(err).Msg("Не удалось получить уведомление холодного старта")
		return false
	}
	if n == nil {
		return false
	}
	return l.OnReceive(*n)
}

// Consume возвращает ожидающее уведомление и очищает его.
// Возвращает nil, если необработанных уведомлений нет.
func (l *Listener) Consume() *OrderNotice {
	l.mu.Lock()
	defer l.mu.Unlock()
	notice := l.pending
	l.pending = nil
	return notice
}

// HasPending сообщает, есть ли необработанное уведомление.
func (l *Listener) HasPending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending != nil
}

// remember добавляет идентификатор доставки, вытесняя самый старый.
// Вызывается под mu.
func (l *Listener) remember(id string) {
	l.seen[id] = struct{}{}
	l.seenSeq = append(l.seenSeq, id)
	if len(l.seenSeq) > seenLimit {
		oldest := l.seenSeq[0]
		l.seenSeq = l.seenSeq[1:]
		delete(l.seen, oldest)
	}
}

// parseOrderID приводит значение orderId к числу.
// Сервер шлет его строкой, но старые клиенты могли класть число.
// Номера заказов начинаются с 1, ноль и отрицательные отбрасываются.
func parseOrderID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
