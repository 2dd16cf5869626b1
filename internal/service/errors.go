package service

import "errors"

// Сентинели доменных ошибок. Хендлеры отображают их в HTTP-статусы.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
	ErrInvalidState       = errors.New("invalid state")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Error — доменная ошибка с человекочитаемым сообщением для ответа клиенту.
// errors.Is по одному из сентинелей работает через Unwrap.
type Error struct {
	Kind    error
	Message string
	Detail  string // низкоуровневая причина, попадает в поле error ответа
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func errNotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func errInvalidInput(msg string) error { return &Error{Kind: ErrInvalidInput, Message: msg} }

func errConflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

func errInvalidState(msg string) error { return &Error{Kind: ErrInvalidState, Message: msg} }

func errUnauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }

func errServiceUnavailable(msg, detail string) error {
	return &Error{Kind: ErrServiceUnavailable, Message: msg, Detail: detail}
}
