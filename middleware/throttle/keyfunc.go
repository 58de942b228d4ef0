package throttle

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeyFunc devolve o identificador usado no throttle para a requisição.
type KeyFunc func(r *http.Request) string

// Prefixos indicam de onde veio o identificador (e quanto confiar nele).
const (
	SourceIdentity    = "id:"
	SourceIP          = "ip:"
	SourceFingerprint = "fp:"
)

// Cabeçalhos enviados pelo front para compor o fingerprint.
const (
	HeaderScreenSize     = "X-Screen-Size"
	HeaderTimezoneOffset = "X-Timezone-Offset"
)

type KeyOptions struct {
	// IdentityHeaders são consultados em ordem (ex.: X-Session-Id, X-User-Id).
	IdentityHeaders    []string
	TrustXForwardedFor bool
	// SkipRemoteAddr ignora o RemoteAddr, útil atrás de um proxy que não repassa
	// o IP do cliente: nesse caso todo mundo teria o mesmo IP.
	SkipRemoteAddr bool
}

func DefaultKeyFunc(opts KeyOptions) KeyFunc {
	return func(r *http.Request) string {
		for _, h := range opts.IdentityHeaders {
			if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
				return SourceIdentity + v
			}
		}

		if opts.TrustXForwardedFor {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return SourceIP + ip
				}
			}
		}

		if !opts.SkipRemoteAddr {
			addr := strings.TrimSpace(r.RemoteAddr)
			if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
				return SourceIP + host
			}
			if addr != "" {
				return SourceIP + addr
			}
		}

		return Fingerprint(r)
	}
}

// Fingerprint mistura sinais observáveis do cliente num identificador de baixa
// entropia. Qualquer cliente consegue trocar esses valores; use apenas quando
// não houver identidade nem IP.
func Fingerprint(r *http.Request) string {
	d := xxhash.New()
	for _, v := range []string{
		r.UserAgent(),
		r.Header.Get("Accept-Language"),
		r.Header.Get(HeaderScreenSize),
		r.Header.Get(HeaderTimezoneOffset),
	} {
		_, _ = d.WriteString(strings.TrimSpace(v))
		_, _ = d.WriteString("|")
	}
	return SourceFingerprint + strconv.FormatUint(d.Sum64(), 16)
}

// LowConfidence diz se o identificador veio do fingerprint.
func LowConfidence(key string) bool {
	return strings.HasPrefix(key, SourceFingerprint)
}

type identifierCtxKey struct{}

// WithIdentifier guarda o identificador no contexto para os handlers seguintes.
func WithIdentifier(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, identifierCtxKey{}, id)
}

func IdentifierFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identifierCtxKey{}).(string)
	return id, ok && id != ""
}
