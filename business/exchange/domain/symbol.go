// Package domain holds exchange-agnostic market data types.
package domain

import (
	"strings"

	"github.com/fd1az/arb-scanner/internal/apperror"
)

// Symbol is a trading pair in canonical "BASE/QUOTE" form, e.g. "BTC/USDT".
// Connectors translate it to and from their venue-specific notation.
type Symbol struct {
	Base  string
	Quote string
}

// ParseSymbol parses a canonical "BASE/QUOTE" string.
func ParseSymbol(s string) (Symbol, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Symbol{}, apperror.New(apperror.CodeInvalidFormat,
			apperror.WithContext("symbol "+s))
	}
	return Symbol{
		Base:  strings.ToUpper(parts[0]),
		Quote: strings.ToUpper(parts[1]),
	}, nil
}

// NewSymbol builds a symbol from base and quote assets.
func NewSymbol(base, quote string) Symbol {
	return Symbol{
		Base:  strings.ToUpper(base),
		Quote: strings.ToUpper(quote),
	}
}

// String returns the canonical "BASE/QUOTE" form.
func (s Symbol) String() string {
	return s.Base + "/" + s.Quote
}

// IsZero reports whether the symbol is empty.
func (s Symbol) IsZero() bool {
	return s.Base == "" && s.Quote == ""
}

// leveraged token suffixes excluded from discovery
var leveragedSuffixes = []string{"3L", "3S", "UP", "DOWN", "BULL", "BEAR"}

// IsLeveraged reports whether the base asset is a leveraged token
// (3L/3S/UP/DOWN/BULL/BEAR suffixed). These track derivative products
// and never converge across venues.
func (s Symbol) IsLeveraged() bool {
	for _, suffix := range leveragedSuffixes {
		if strings.HasSuffix(s.Base, suffix) && len(s.Base) > len(suffix) {
			return true
		}
	}
	return false
}
