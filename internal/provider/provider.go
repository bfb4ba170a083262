package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/kitbuilder587/dealscout/internal/domain"
)

// Provider - один upstream-источник товаров. FetchPage возвращает
// уже нормализованную страницу целиком либо ошибку: частичных
// страниц не бывает. Пустая страница - валидный результат.
type Provider interface {
	FetchPage(ctx context.Context, query string, page int) ([]domain.Product, error)
	Kind() domain.ProviderKind
	Configured() bool
}

// RateLimiter - процессный троттлинг исходящих вызовов.
// Acquire блокирует до своего слота и не отменяется.
type RateLimiter interface {
	Acquire()
}

// UpstreamError - ошибка вызова провайдера после классификации
// статуса. Retryable выставляется для транзиентных статусов;
// клиент возвращает такую ошибку только после исчерпания попыток.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
	Retryable  bool
	Attempts   int
}

func (e *UpstreamError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d after %d attempt(s): %s", e.Provider, e.StatusCode, e.Attempts, e.Body)
	}
	return fmt.Sprintf("%s: status %d after %d attempt(s)", e.Provider, e.StatusCode, e.Attempts)
}

// CompactBody готовит тело ответа для текста ошибки:
// валидный JSON компактируется, остальное идет как есть.
func CompactBody(body []byte) string {
	if json.Valid(body) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, body); err == nil {
			return buf.String()
		}
	}
	return string(body)
}
