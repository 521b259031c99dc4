package domain

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CityKey returns the identity key of a city name: trimmed and Unicode
// case-folded, so "São Paulo" and "SÃO PAULO" collide.
func CityKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// SameCity reports whether two city names address the same alert slot.
func SameCity(a, b string) bool {
	return CityKey(a) == CityKey(b)
}

// Slug lowercases a city name, strips diacritics and joins words with dashes:
// "São Luís" -> "sao-luis".
func Slug(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, name)
	if err != nil {
		plain = name
	}
	return strings.Join(strings.Fields(strings.ToLower(plain)), "-")
}

// AlertID builds the alert identifier "<slug>-<createdAt ms>".
func AlertID(cityName string, createdAtMs int64) string {
	return Slug(cityName) + "-" + strconv.FormatInt(createdAtMs, 10)
}
