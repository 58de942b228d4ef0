package location

import (
	"context"
	"net"
)

type clientIPKey struct{}

// WithClientIP informa aos provedores de rede qual IP consultar.
// Sem isso, o lookup por IP resolve o IP de saída do próprio processo.
func WithClientIP(ctx context.Context, ip net.IP) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func ClientIP(ctx context.Context) (net.IP, bool) {
	ip, ok := ctx.Value(clientIPKey{}).(net.IP)
	return ip, ok && ip != nil
}
