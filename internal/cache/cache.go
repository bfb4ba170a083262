package cache

import "time"

// Cache - процессный TTL-кеш. Значения нетипизированы, вызывающая
// сторона делает type assertion на свой тип.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Len() int
}
