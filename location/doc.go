// Package location resolve a localização aproximada do cliente por uma cadeia
// ordenada de provedores: sensor do dispositivo (+ reverse geocode), lookup por
// IP e, por fim, um registro padrão.
//
// Resolve nunca falha. Cada provedor tem seu próprio timeout e sua falha vira
// um Attempt tipado (fault.Kind); a cadeia sempre termina num Record válido,
// com os campos vazios trocados por "Unknown"/"XX".
//
// O resultado fica memorizado no Resolver até Invalidate ser chamado. O
// Resolver pertence à raiz de composição (cmd) e é passado por referência.
package location
