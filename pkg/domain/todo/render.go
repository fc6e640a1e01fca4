package todo

import (
	"fmt"
	"regexp"
	"strconv"
)

// AmountClass is the CSS class of the inline marker around rendered amounts.
const AmountClass = "premium-amount"

var (
	multipliedAmountPattern = regexp.MustCompile(`\{\{\s*amount\s*\*\s*(\d+)\s*\}\}`)
	amountPattern           = regexp.MustCompile(`\{\{\s*amount\s*\}\}`)
)

// RenderText substitutes amount placeholders in a template text.
//
// "{{amount*N}}" becomes amount*N and "{{amount}}" becomes amount, each wrapped
// in a span so the value is visually distinguishable while its plain text is
// still the number. Only the first occurrence of each pattern is replaced; a
// second identical token stays literal.
func RenderText(text string, amount int) string {
	if loc := multipliedAmountPattern.FindStringSubmatchIndex(text); loc != nil {
		factor, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err == nil {
			text = text[:loc[0]] + amountMarkup(amount*factor) + text[loc[1]:]
		}
	}
	if loc := amountPattern.FindStringIndex(text); loc != nil {
		text = text[:loc[0]] + amountMarkup(amount) + text[loc[1]:]
	}
	return text
}

func amountMarkup(v int) string {
	return fmt.Sprintf(`<span class="%s">%d</span>`, AmountClass, v)
}

// HasPlaceholder reports whether text still carries an amount placeholder.
func HasPlaceholder(text string) bool {
	return multipliedAmountPattern.MatchString(text) || amountPattern.MatchString(text)
}
