package password

import (
	"strings"
	"unicode"
)

// check es una regla del aviso de password débil: reason se reporta si ok falla.
type check struct {
	reason string
	ok     func(string) bool
}

func hasRune(pred func(rune) bool) func(string) bool {
	return func(s string) bool { return strings.IndexFunc(s, pred) >= 0 }
}

// Policy decide cuándo el seed advierte sobre el password del admin. No
// rechaza nada: el default histórico es "secret".
type Policy struct {
	MinLength int
	checks    []check
}

// DefaultPolicy exige largo mínimo, mayúscula, minúscula y dígito.
var DefaultPolicy = NewPolicy(10)

// NewPolicy arma la política de aviso con el largo mínimo dado.
func NewPolicy(minLength int) Policy {
	return Policy{
		MinLength: minLength,
		checks: []check{
			{"missing_upper", hasRune(unicode.IsUpper)},
			{"missing_lower", hasRune(unicode.IsLower)},
			{"missing_digit", hasRune(unicode.IsDigit)},
		},
	}
}

// Weaknesses retorna los motivos por los que s dispara el aviso (vacío si no).
func (p Policy) Weaknesses(s string) []string {
	var reasons []string
	if len([]rune(s)) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	for _, c := range p.checks {
		if !c.ok(s) {
			reasons = append(reasons, c.reason)
		}
	}
	return reasons
}
