package usecase

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	ugcPolicy    = bluemonday.UGCPolicy()
)

const maxSanitizePasses = 32

// SanitizeText remove qualquer marcação de texto livre vindo do visitante.
// Entidades escapadas são decodificadas e reprocessadas até estabilizar, então
// "&lt;script&gt;" também não sobrevive. Se não estabilizar dentro do limite
// de passadas, o resultado sai escapado e nunca decodificado.
func SanitizeText(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < maxSanitizePasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
		if next == s {
			return s
		}
		s = next
	}
	return strictPolicy.Sanitize(s)
}

// SanitizeHTML mantém formatação básica e remove scripts e handlers.
func SanitizeHTML(s string) string {
	return ugcPolicy.Sanitize(s)
}

func sanitizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, SanitizeText(t))
	}
	return out
}
