package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidPrice is returned when a display price cannot be parsed.
var ErrInvalidPrice = errors.New("invalid price")

// Currency describes how amounts of one ISO currency are displayed.
type Currency struct {
	Unit   currency.Unit
	Symbol string
	// Digits is the number of minor-unit digits stored in Price.Amount.
	Digits int
	// Lang selects digit grouping for formatting.
	Lang language.Tag
}

var currencies = map[string]Currency{
	"IDR": {Unit: currency.MustParseISO("IDR"), Symbol: "Rp", Digits: 0, Lang: language.Indonesian},
	"USD": {Unit: currency.MustParseISO("USD"), Symbol: "$", Digits: 2, Lang: language.AmericanEnglish},
}

// symbolOrder is checked longest-first when parsing display strings.
var symbolOrder = []string{"IDR", "USD", "Rp", "$"}

// Lookup returns the display rules for an ISO currency code.
func Lookup(code string) (Currency, bool) {
	c, ok := currencies[strings.ToUpper(code)]
	return c, ok
}

// Price is an amount in minor units of a currency.
type Price struct {
	Amount   int64  `json:"amount" yaml:"amount" toml:"amount"`
	Currency string `json:"currency" yaml:"currency" toml:"currency"`
}

// New builds a Price after validating the currency code.
func New(amount int64, code string) (Price, error) {
	c, ok := Lookup(code)
	if !ok {
		if _, err := currency.ParseISO(code); err != nil {
			return Price{}, fmt.Errorf("%w: unknown currency %q", ErrInvalidPrice, code)
		}
		return Price{}, fmt.Errorf("%w: unsupported currency %q", ErrInvalidPrice, code)
	}
	if amount < 0 {
		return Price{}, fmt.Errorf("%w: negative amount", ErrInvalidPrice)
	}
	return Price{Amount: amount, Currency: c.Unit.String()}, nil
}

// IDR is shorthand for a rupiah price.
func IDR(amount int64) Price {
	return Price{Amount: amount, Currency: "IDR"}
}

// Times multiplies the price by a quantity.
func (p Price) Times(quantity int) Price {
	return Price{Amount: p.Amount * int64(quantity), Currency: p.Currency}
}

// IsZero reports whether the price is unset.
func (p Price) IsZero() bool {
	return p.Amount == 0 && p.Currency == ""
}

// String formats the price for display, e.g. "Rp 2.800.000" or "$45.00".
func (p Price) String() string {
	c, ok := Lookup(p.Currency)
	if !ok {
		return fmt.Sprintf("%s %d", p.Currency, p.Amount)
	}

	printer := message.NewPrinter(c.Lang)
	sign := ""
	amount := p.Amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	if c.Digits == 0 {
		return sign + spaced(c.Symbol) + printer.Sprintf("%d", amount)
	}

	scale := pow10(c.Digits)
	major := printer.Sprintf("%d", amount/scale)
	return fmt.Sprintf("%s%s%s.%0*d", sign, spaced(c.Symbol), major, c.Digits, amount%scale)
}

// Parse reads a display price such as "Rp 700000", "Rp 2.800.000",
// "IDR 500000" or "$45.00".
func Parse(s string) (Price, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Price{}, fmt.Errorf("%w: empty", ErrInvalidPrice)
	}

	var c Currency
	found := false
	for _, sym := range symbolOrder {
		if strings.HasPrefix(strings.ToUpper(raw), strings.ToUpper(sym)) {
			raw = strings.TrimSpace(raw[len(sym):])
			if cur, ok := Lookup(sym); ok {
				c = cur
			} else {
				c = bySymbol(sym)
			}
			found = true
			break
		}
	}
	if !found {
		return Price{}, fmt.Errorf("%w: unknown currency in %q", ErrInvalidPrice, s)
	}

	amount, err := parseAmount(raw, c.Digits)
	if err != nil {
		return Price{}, fmt.Errorf("%w: %q: %v", ErrInvalidPrice, s, err)
	}
	return Price{Amount: amount, Currency: c.Unit.String()}, nil
}

// MustParse is Parse for static data; it panics on error.
func MustParse(s string) Price {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func parseAmount(raw string, digits int) (int64, error) {
	if raw == "" {
		return 0, errors.New("missing amount")
	}

	whole, frac := raw, ""
	if digits > 0 {
		whole = strings.ReplaceAll(raw, ",", "")
		if i := strings.LastIndex(whole, "."); i >= 0 {
			whole, frac = whole[:i], whole[i+1:]
		}
		if len(frac) > digits {
			return 0, fmt.Errorf("more than %d decimal places", digits)
		}
	} else {
		// id-ID: "." groups thousands and "," starts the fraction.
		if i := strings.LastIndex(raw, ","); i >= 0 {
			if _, err := digitsOnly(raw[i+1:]); err != nil {
				return 0, err
			}
			if strings.Trim(raw[i+1:], "0") != "" {
				return 0, errors.New("currency has no minor units")
			}
			whole = raw[:i]
		}
		whole = strings.NewReplacer(".", "", " ", "").Replace(whole)
	}

	n, err := digitsOnly(whole)
	if err != nil {
		return 0, err
	}
	for len(frac) < digits {
		frac += "0"
	}
	var f int64
	if frac != "" {
		if f, err = digitsOnly(frac); err != nil {
			return 0, err
		}
	}
	scale := pow10(digits)
	if n > (math.MaxInt64-f)/scale {
		return 0, errors.New("amount too large")
	}
	return n*scale + f, nil
}

func digitsOnly(s string) (int64, error) {
	if s == "" {
		return 0, errors.New("missing digits")
	}
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("unexpected character %q", r)
		}
		d := int64(r - '0')
		if n > (math.MaxInt64-d)/10 {
			return 0, errors.New("amount too large")
		}
		n = n*10 + d
	}
	return n, nil
}

func bySymbol(sym string) Currency {
	for _, c := range currencies {
		if c.Symbol == sym {
			return c
		}
	}
	return Currency{}
}

func spaced(symbol string) string {
	if symbol == "$" {
		return symbol
	}
	return symbol + " "
}

func pow10(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
