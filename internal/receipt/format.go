package receipt

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders m with its currency symbol, grouped thousands and two
// decimals, e.g. $1,234.50 or CA$3.00. Symbols that are plain letters, such
// as CHF, are separated from the amount by a space.
func FormatPrice(m domain.Money) string {
	amount := printer.Sprint(number.Decimal(m.Amount.Round(2).InexactFloat64(), number.Scale(2)))
	sym := Symbol(m.Currency)

	sign := ""
	if strings.HasPrefix(amount, "-") {
		sign, amount = "-", amount[1:]
	}

	if last, _ := utf8.DecodeLastRuneInString(sym); unicode.IsLetter(last) {
		return sign + sym + " " + amount
	}
	return sign + sym + amount
}

// Symbol is the English display symbol of unit, falling back to its ISO code.
func Symbol(unit currency.Unit) string {
	sym := strings.TrimSpace(printer.Sprint(currency.Symbol(unit)))
	if sym == "" {
		return unit.String()
	}
	return sym
}

// NewOrderNumber returns nine random upper-case alphanumerics.
func NewOrderNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:9])
}
