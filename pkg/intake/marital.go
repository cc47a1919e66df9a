package intake

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var partnered = map[string]struct{}{
	"CASADO":      {},
	"CASADA":      {},
	"CASADO(A)":   {},
	"UNION LIBRE": {},
}

// RequiresSpouse reports whether a marital status implies a spouse record.
// Matching ignores case, accents, and underscore/space differences, so
// "Unión libre", "union_libre" and "casado" all qualify.
func RequiresSpouse(status string) bool {
	_, ok := partnered[foldStatus(status)]
	return ok
}

func foldStatus(status string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), status)
	if err != nil {
		stripped = status
	}
	stripped = strings.ReplaceAll(stripped, "_", " ")
	return strings.ToUpper(strings.Join(strings.Fields(stripped), " "))
}
