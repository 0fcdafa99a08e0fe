// Package render substitutes dealer fields into template placeholder tokens.
package render

import (
	"regexp"

	"github.com/dealerdesk/dealerdesk/internal/db/models"
)

// token matches the fixed set of recognized placeholder names. Token names
// are case-sensitive; whitespace inside the braces is arbitrary.
var token = regexp.MustCompile(`\{\{\s*(DEALER_NAME|NAME|ADDRESS|NUMBER|PHONE|BRAND)\s*\}\}`)

// Dealer replaces every recognized {{ TOKEN }} occurrence in template with the
// corresponding dealer field. A nil dealer returns the template unchanged.
// Unrecognized tokens are left verbatim; there is no escaping, and the single
// pass means substituted values are never rescanned.
func Dealer(template string, dealer *models.Dealer) string {
	if dealer == nil {
		return template
	}

	values := map[string]string{
		"DEALER_NAME": dealer.Name,
		"NAME":        dealer.Name,
		"ADDRESS":     dealer.Address,
		"NUMBER":      dealer.Number,
		"PHONE":       dealer.Number,
		"BRAND":       dealer.Brand,
	}

	return token.ReplaceAllStringFunc(template, func(m string) string {
		return values[token.FindStringSubmatch(m)[1]]
	})
}
