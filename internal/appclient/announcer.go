package appclient

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Баннер скрывается сам через это время, если его не закрыли вручную.
const autoHideDelay = 5 * time.Second

// Banner - показываемое на экране объявление.
type Banner struct {
	Title   string
	Message string
	ShownAt time.Time
}

// SoundPlayer проигрывает звук уведомления. Реализация зависит от платформы.
type SoundPlayer interface {
	Play()
}

// Announcer показывает баннер о новом событии. Одновременно виден
// только один баннер: новое объявление замещает текущее, а не встает
// в очередь. Баннер скрывается вручную или сам через autoHideDelay.
type Announcer struct {
	mu        sync.Mutex
	current   *Banner
	timer     *time.Timer
	gen       uint64
	hideDelay time.Duration
	sound     SoundPlayer
	onTap     func(Banner)
	logger    zerolog.Logger
}

func NewAnnouncer(sound SoundPlayer, logger zerolog.Logger) *Announcer {
	return &Announcer{
		hideDelay: autoHideDelay,
		sound:     sound,
		logger:    logger.With().Str("component", "Announcer").Logger(),
	}
}

// Announce показывает баннер и взводит таймер автоскрытия.
// Таймер предыдущего баннера сбрасывается.
func (a *Announcer) Announce(title, message string) {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.gen++
	gen := a.gen
	a.current = &Banner{
		Title:   title,
		Message: message,
		ShownAt: time.Now(),
	}
	a.timer = time.AfterFunc(a.hideDelay, func() {
		a.hideIfCurrent(gen)
	})
	a.mu.Unlock()

	a.logger.Debug().Str("title", title).Msg("Баннер показан")
	if a.sound != nil {
		a.sound.Play()
	}
}

// OnTap задает обработчик нажатия на баннер, например обновление
// списка заказов на экране.
func (a *Announcer) OnTap(fn func(Banner)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onTap = fn
}

// Tap обрабатывает нажатие на баннер: сначала сообщает экрану,
// затем скрывает баннер как при ручном закрытии.
func (a *Announcer) Tap() {
	a.mu.Lock()
	banner := a.current
	fn := a.onTap
	a.mu.Unlock()

	if banner == nil {
		return
	}
	if fn != nil {
		fn(*banner)
	}
	a.Dismiss()
}

// Dismiss скрывает баннер вручную и отменяет таймер автоскрытия.
func (a *Announcer) Dismiss() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.gen++
	a.current = nil
}

// Current возвращает показываемый баннер или nil.
func (a *Announcer) Current() *Banner {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// hideIfCurrent скрывает баннер только если за время таймера
// его не заместили новым и не закрыли вручную.
func (a *Announcer) hideIfCurrent(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen != gen {
		return
	}
	a.current = nil
	a.timer = nil
	a.logger.Debug().Msg("Баннер скрыт по таймеру")
}
