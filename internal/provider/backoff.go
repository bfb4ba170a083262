package provider

import (
	"context"
	"math/rand"
	"net/http"
	"time"
)

// RetryConfig - параметры повторов одного постраничного вызова.
// Рост мультипликативный и не ограничен сверху: его и так
// ограничивает потолок попыток.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Growth         float64
	MaxJitter      time.Duration
}

func (c RetryConfig) WithDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 1200 * time.Millisecond
	}
	if c.Growth < 1 {
		c.Growth = 1.7
	}
	if c.MaxJitter <= 0 {
		c.MaxJitter = 300 * time.Millisecond
	}
	return c
}

// RetryableStatus - транзиентные статусы, после которых вызов
// повторяется с backoff. Все остальные фатальны для страницы.
func RetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// SleepBackoff спит backoff плюс джиттер, равномерный на [0, maxJitter),
// чтобы повторы конкурирующих запросов не синхронизировались.
func SleepBackoff(ctx context.Context, backoff, maxJitter time.Duration) error {
	d := backoff
	if maxJitter > 0 {
		d += time.Duration(rand.Int63n(int64(maxJitter)))
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
