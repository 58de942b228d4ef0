// Package upstream é o cliente HTTP de saída usado pelos provedores externos
// (IP lookup, reverse geocode, câmbio).
//
// Cada host recebe um token bucket próprio (golang.org/x/time/rate) para não
// estourar a cota dos endpoints públicos, e toda falha sai classificada com um
// fault.Kind.
package upstream
