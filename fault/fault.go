package fault

import (
	"context"
	"errors"
	"net"
)

// Kind classifica uma falha.
type Kind string

const (
	PermissionDenied    Kind = "permission_denied"
	Timeout             Kind = "timeout"
	NetworkUnavailable  Kind = "network_unavailable"
	MalformedResponse   Kind = "malformed_response"
	UnsupportedCurrency Kind = "unsupported_currency"
	RateLimited         Kind = "rate_limited"
	Unknown             Kind = "unknown"
)

// Error é o erro tipado usado pelos provedores.
// Op identifica quem falhou (ex.: "ip-lookup", "fx-fetch").
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	msg := e.Op + ": " + string(e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is permite errors.Is(err, fault.Timeout).
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// Kind implementa error para poder ser usado como alvo em errors.Is.
func (k Kind) Error() string { return string(k) }

// KindOf extrai a classificação de qualquer erro.
// Erros que não são *Error são classificados pelo melhor palpite.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Classify(err)
}

// Classify mapeia erros de contexto/rede para um Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout
	case errors.Is(err, context.Canceled):
		return Timeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		if nerr.Timeout() {
			return Timeout
		}
		return NetworkUnavailable
	}
	var kind Kind
	if errors.As(err, &kind) {
		return kind
	}
	return Unknown
}
