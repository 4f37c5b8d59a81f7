// Package contact содержит форму обратной связи и её валидацию
package contact

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Минимальные длины полей
const (
	MinNameLength    = 2
	MinMessageLength = 10
)

// Сообщения об ошибках
const (
	MsgNameRequired    = "Имя обязательно"
	MsgNameTooShort    = "Имя должно содержать не меньше 2 символов"
	MsgEmailRequired   = "Email обязателен"
	MsgEmailInvalid    = "Введите корректный email"
	MsgMessageRequired = "Сообщение обязательно"
	MsgMessageTooShort = "Сообщение должно содержать не меньше 10 символов"
	MsgSendFailed      = "Не удалось отправить сообщение. Попробуйте ещё раз."
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Field поле формы
type Field string

// Поля формы
const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldMessage Field = "message"
)

// Fields поля в порядке отображения
var Fields = []Field{FieldName, FieldEmail, FieldMessage}

// Form данные формы обратной связи
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Get возвращает значение поля
func (f Form) Get(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldMessage:
		return f.Message
	}
	return ""
}

// Set устанавливает значение поля
func (f *Form) Set(field Field, value string) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldMessage:
		f.Message = value
	}
}

// Errors ошибки валидации по полям
type Errors map[Field]string

// Ok возвращает true, если ошибок нет
func (e Errors) Ok() bool {
	return len(e) == 0
}

// Error реализует интерфейс error
func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range Fields {
		if msg, ok := e[field]; ok {
			parts = append(parts, string(field)+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

// Validate проверяет все поля формы
func Validate(f Form) Errors {
	errs := Errors{}
	for _, field := range Fields {
		if msg := ValidateField(f, field); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

// ValidateField проверяет одно поле; пустая строка означает отсутствие ошибки
func ValidateField(f Form, field Field) string {
	switch field {
	case FieldName:
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return MsgNameRequired
		}
		if utf8.RuneCountInString(name) < MinNameLength {
			return MsgNameTooShort
		}
	case FieldEmail:
		email := strings.TrimSpace(f.Email)
		if email == "" {
			return MsgEmailRequired
		}
		if !emailRe.MatchString(f.Email) {
			return MsgEmailInvalid
		}
	case FieldMessage:
		message := strings.TrimSpace(f.Message)
		if message == "" {
			return MsgMessageRequired
		}
		if utf8.RuneCountInString(message) < MinMessageLength {
			return MsgMessageTooShort
		}
	}
	return ""
}

// Sender доставляет сообщение из формы
type Sender interface {
	Send(ctx context.Context, f Form) error
}

// LogSender записывает сообщения в лог вместо отправки
type LogSender struct {
	Logger *zap.Logger
}

// Send реализует Sender
func (s LogSender) Send(ctx context.Context, f Form) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Сообщение из формы обратной связи",
		zap.String("name", strings.TrimSpace(f.Name)),
		zap.String("email", strings.TrimSpace(f.Email)),
		zap.String("message", strings.TrimSpace(f.Message)),
	)
	return nil
}

// Submitter проверяет форму и передаёт её отправителю
type Submitter struct {
	sender Sender
	logger *zap.Logger
}

// NewSubmitter создает новый Submitter
func NewSubmitter(sender Sender, logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{sender: sender, logger: logger}
}

// Submit проверяет и отправляет форму. Ошибка отправки превращается
// в общее сообщение на поле message.
func (s *Submitter) Submit(ctx context.Context, f Form) Errors {
	if errs := Validate(f); !errs.Ok() {
		return errs
	}

	if err := s.sender.Send(ctx, f); err != nil {
		s.logger.Warn("Не удалось отправить сообщение", zap.Error(err))
		return Errors{FieldMessage: MsgSendFailed}
	}

	return nil
}
