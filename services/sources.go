package services

import (
	"net/url"
	"strings"
)

// NormalizeSource извлекает host из URL, убирает www. и порт.
// Для невалидного URL возвращает вход как есть (пользователь мог
// вставить голый домен).
func NormalizeSource(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return strings.TrimSpace(rawURL)
	}
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}
