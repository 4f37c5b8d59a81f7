package playlist

import (
	"context"
	"errors"
	"fmt"
)

// Kind классифицирует ошибки клиента
type Kind int

// Виды ошибок
const (
	KindUnknown Kind = iota
	KindTimeout
	KindCanceled
	KindTransport
	KindHTTPStatus
	KindDecode
	KindInvalid
)

// String возвращает имя вида ошибки
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindTransport:
		return "transport"
	case KindHTTPStatus:
		return "http_status"
	case KindDecode:
		return "decode"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

var (
	// ErrTimeout возвращается, если бэкенд не ответил за отведённое время
	ErrTimeout = errors.New("превышено время ожидания ответа")
	// ErrClosed возвращается после закрытия клиента
	ErrClosed = errors.New("клиент плейлиста закрыт")
	// ErrAbandoned возвращается, если вызывающий перестал ждать раньше, чем запрос завершился
	ErrAbandoned = errors.New("ожидание плейлиста прервано")
)

// TransportError означает, что до бэкенда не удалось достучаться
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ошибка соединения с %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError означает, что бэкенд ответил статусом вне диапазона 2xx
type StatusError struct {
	StatusCode int
	StatusText string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ошибка HTTP: статус %d - %s", e.StatusCode, e.StatusText)
}

// DecodeError означает, что тело ответа не является массивом треков
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ошибка разбора ответа: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ValidationError означает, что трек в ответе нарушает ожидаемую форму
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("некорректный трек #%d: %s", e.Index, e.Reason)
}

// KindOf определяет вид ошибки, возвращённой клиентом
func KindOf(err error) Kind {
	var (
		transportErr  *TransportError
		statusErr     *StatusError
		decodeErr     *DecodeError
		validationErr *ValidationError
	)

	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrAbandoned):
		return KindCanceled
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrClosed), errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &statusErr):
		return KindHTTPStatus
	case errors.As(err, &decodeErr):
		return KindDecode
	case errors.As(err, &validationErr):
		return KindInvalid
	default:
		return KindUnknown
	}
}
