package ratelimit

import (
	"sync"
	"time"
)

// Limiter - процессный троттлинг исходящих вызовов к провайдеру:
// между любыми двумя Acquire проходит не меньше minInterval.
// Провайдер лимитирует весь credential целиком, поэтому лимитер
// один на процесс, а не на ключ запроса.
//
// Мьютекс держится на время сна: вызывающие строго сериализуются
// в порядке захвата лока, ожидание не отменяется контекстом.
type Limiter struct {
	mu       sync.Mutex
	last     time.Time
	interval time.Duration
}

type Config struct {
	MinInterval time.Duration
}

func New(cfg Config) *Limiter {
	interval := cfg.MinInterval
	if interval <= 0 {
		interval = 1100 * time.Millisecond
	}
	return &Limiter{interval: interval}
}

// Acquire блокирует, пока с момента возврата предыдущего Acquire
// не пройдет minInterval, и записывает новый момент вызова.
func (l *Limiter) Acquire() {
	l.mu.Lock()
	defer l.mu.Unlock()

	wait := l.interval - time.Since(l.last)
	if wait > 0 {
		time.Sleep(wait)
	}
	l.last = time.Now()
}

func (l *Limiter) Interval() time.Duration {
	return l.interval
}
