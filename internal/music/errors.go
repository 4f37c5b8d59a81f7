package music

import (
	"errors"
	"fmt"

	"github.com/hazadus/go-portfolio/internal/playlist"
)

// Describe переводит ошибку загрузки плейлиста в сообщение для пользователя
func Describe(err error) string {
	switch playlist.KindOf(err) {
	case playlist.KindTimeout:
		return "Бэкенд не ответил вовремя. Попробуйте ещё раз."
	case playlist.KindTransport:
		return "Бэкенд недоступен. Проверьте соединение."
	case playlist.KindHTTPStatus:
		var statusErr *playlist.StatusError
		if errors.As(err, &statusErr) {
			return fmt.Sprintf("Бэкенд ответил ошибкой %d (%s).", statusErr.StatusCode, statusErr.StatusText)
		}
	case playlist.KindDecode, playlist.KindInvalid:
		return "Бэкенд вернул некорректный плейлист."
	case playlist.KindCanceled:
		return "Загрузка плейлиста отменена."
	}
	return err.Error()
}
