// Package providers tem as implementações concretas dos degraus de
// location.Provider: sensor do dispositivo com reverse geocode, lookup HTTP
// por IP, base GeoIP local (MaxMind) e o registro padrão.
package providers
