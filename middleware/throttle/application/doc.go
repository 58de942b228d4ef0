// Package application contém os casos de uso do throttle por ação e do
// limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Guard.IsAllowed(id, action) retorna uma Decision (allow/deny + retry-after).
package application
