package service

import (
	"fmt"
)

// ValidationError - отказ валидации до сохранения
// Field содержит первое невалидное поле, сообщение уходит отправителю
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Field, e.Reason)
}
