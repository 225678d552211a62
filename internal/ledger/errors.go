package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound — нет аккаунта или открытой сделки с таким id.
	ErrNotFound = errors.New("not found")

	// ErrAlreadySettled — сделка уже закрыта; повторное закрытие — жёсткая
	// ошибка, баланс не трогаем.
	ErrAlreadySettled = errors.New("trade already settled")
)

// ValidationError — кривой пользовательский ввод, состояние не меняется.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}
