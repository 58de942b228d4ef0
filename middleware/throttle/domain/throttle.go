package domain

import (
	"errors"
	"time"
)

// Key identifica um contador: (identificador do cliente, ação).
type Key struct {
	Identifier string
	Action     string
}

func (k Key) String() string { return k.Action + ":" + k.Identifier }

// ActionPolicy é registrada uma vez por ação e não muda depois disso
// (Configure de novo substitui a política inteira).
type ActionPolicy struct {
	MaxRequests   int           `yaml:"max_requests" json:"max_requests"`
	Window        time.Duration `yaml:"window" json:"window"`
	BlockDuration time.Duration `yaml:"block_duration" json:"block_duration"`
}

var (
	ErrInvalidMax    = errors.New("max_requests must be > 0")
	ErrInvalidWindow = errors.New("window must be > 0")
	ErrInvalidBlock  = errors.New("block_duration must be >= 0")
)

func (p ActionPolicy) Validate() error {
	switch {
	case p.MaxRequests <= 0:
		return ErrInvalidMax
	case p.Window <= 0:
		return ErrInvalidWindow
	case p.BlockDuration < 0:
		return ErrInvalidBlock
	}
	return nil
}

// WithDefaults preenche BlockDuration com a própria janela quando omitido.
func (p ActionPolicy) WithDefaults() ActionPolicy {
	if p.BlockDuration == 0 {
		p.BlockDuration = p.Window
	}
	return p
}

// Entry é o estado por chave.
//
// WindowStart nunca anda para trás. Count só passa de MaxRequests
// transitoriamente, dentro da chamada que dispara o bloqueio.
// Window guarda a janela da política no momento do último acesso, para a
// limpeza saber quando a entrada ficou ociosa (2×Window).
type Entry struct {
	Count         int
	WindowStart   time.Time
	LastRequestAt time.Time
	Window        time.Duration
}

// IdleSince diz se a entrada está ociosa há mais de 2×Window em now.
func (e Entry) IdleSince(now time.Time) bool {
	return now.Sub(e.LastRequestAt) > 2*e.Window
}

// EntryStore guarda as entradas por chave.
//
// Update executa fn de forma atômica para a chave: duas chamadas para a
// mesma chave nunca se intercalam. fn recebe uma entrada zerada quando
// exists=false; o que fn deixar em *e é gravado.
type EntryStore interface {
	Update(key Key, fn func(e *Entry, exists bool))
	Peek(key Key) (Entry, bool)
	Delete(key Key)
}

// Decision é o resultado de IsAllowed.
type Decision struct {
	Allowed bool
	// Remaining é quantas chamadas ainda cabem na janela.
	// -1 quando a ação não tem política registrada.
	Remaining int
	Limit     int
	// RetryAfter só é preenchido quando Allowed=false.
	RetryAfter time.Duration
}

// RetryAfterSeconds arredonda para cima em segundos, com base em milissegundos.
func (d Decision) RetryAfterSeconds() int {
	if d.RetryAfter <= 0 {
		return 0
	}
	ms := d.RetryAfter.Milliseconds()
	return int((ms + 999) / 1000)
}

// Status é a leitura sem efeitos colaterais de uma chave.
type Status struct {
	Count     int
	Remaining int
	Blocked   bool
	// ResetTime é zero quando ainda não existe entrada para a chave.
	ResetTime time.Time
}
