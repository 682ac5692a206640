package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currencies that are quoted without minor units.
var zeroDecimal = map[string]bool{
	"IDR": true,
	"JPY": true,
	"KRW": true,
	"VND": true,
	"ISK": true,
}

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"AUD": "A$",
	"SGD": "S$",
	"MYR": "RM",
	"JPY": "¥",
}

// Format renders an amount with grouped thousands, e.g. "IDR 1.250.000" or "$1,234.50".
func Format(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(code)
	if code == "IDR" {
		return FormatIDR(amount)
	}

	places := int32(2)
	if zeroDecimal[code] {
		places = 0
	}

	rounded := amount.Round(places)
	negative := rounded.IsNegative()
	if negative {
		rounded = rounded.Neg()
	}

	str := rounded.StringFixed(places)
	intPart, frac, _ := strings.Cut(str, ".")
	formatted := addThousandsSeparator(intPart, ",")
	if frac != "" {
		formatted += "." + frac
	}

	var result string
	if sym, ok := symbols[code]; ok {
		result = sym + formatted
	} else {
		result = code + " " + formatted
	}

	if negative {
		result = "-" + result
	}
	return result
}

func FormatIDR(amount decimal.Decimal) string {
	rounded := amount.Round(0)

	negative := rounded.IsNegative()
	if negative {
		rounded = rounded.Neg()
	}

	formatted := addThousandsSeparator(rounded.StringFixed(0), ".")

	result := "IDR " + formatted
	if negative {
		result = "-" + result
	}

	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
