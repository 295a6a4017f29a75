package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	bracketedEmail = regexp.MustCompile(`^(.*?)\s*<([^>]*)>\s*$`)
	emailPattern   = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	amountPattern  = regexp.MustCompile(`^\d+([.,]\d+)?$`)

	// Amounts are stored as NUMERIC(12,2).
	maxAmount = decimal.New(1, 10)
)

// ParseAssignee splits free text of the form "Name <email>" into its parts.
// "<email>" alone uses the email as the name; text without brackets is a
// name with no email.
func ParseAssignee(text string) (name string, email *string, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil, fmt.Errorf("%w: empty assignee", ErrInvalidAssignee)
	}

	m := bracketedEmail.FindStringSubmatch(text)
	if m == nil {
		if strings.ContainsAny(text, "<>") {
			return "", nil, fmt.Errorf("%w: malformed brackets in %q", ErrInvalidAssignee, text)
		}
		return text, nil, nil
	}

	name = strings.TrimSpace(m[1])
	addr := strings.TrimSpace(m[2])
	if addr == "" {
		return "", nil, fmt.Errorf("%w: empty email in %q", ErrInvalidAssignee, text)
	}
	if !emailPattern.MatchString(addr) {
		return "", nil, fmt.Errorf("%w: %q is not an email address", ErrInvalidAssignee, addr)
	}
	if name == "" {
		name = addr
	}
	return name, &addr, nil
}

// ParseAmount parses a non-negative money amount, accepting "," as the decimal
// separator, rounded half-up to two decimals. Empty text yields nil. Only plain
// digits are accepted and the value must stay below 1e10.
func ParseAmount(text string) (*decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if strings.HasPrefix(text, "-") {
		return nil, fmt.Errorf("%q is negative", text)
	}
	if !amountPattern.MatchString(text) {
		return nil, fmt.Errorf("%q is not a number", text)
	}
	d, err := decimal.NewFromString(strings.Replace(text, ",", ".", 1))
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", text)
	}
	d = d.Round(2)
	if d.GreaterThanOrEqual(maxAmount) {
		return nil, fmt.Errorf("%q is out of range", text)
	}
	return &d, nil
}

// ParseCost parses a repair cost; see ParseAmount.
func ParseCost(text string) (*decimal.Decimal, error) {
	d, err := ParseAmount(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCost, err)
	}
	return d, nil
}

func parsePrice(text string) (*decimal.Decimal, error) {
	d, err := ParseAmount(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	}
	return d, nil
}
