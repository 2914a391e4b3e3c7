// Package validation evaluates declarative per-field rule sets against
// a decoded JSON body before a handler runs. All violations across all
// fields are collected in rule order; evaluation never stops at the
// first failure. String values under an Escape rule are sanitized in
// the returned map, so what the caller persists is the neutralized
// form, not the submitted one.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind is the expected JSON type of a field.
type Kind int

const (
	String Kind = iota
	Int
	Decimal
	Date // string in YYYY-MM-DD form
)

// FieldError is one validation violation, reported as a {field, message}
// pair in the response envelope.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Rule describes the constraints on a single field.
//
// Required is only enforced on full (create) validation; partial
// (update) validation skips absent fields entirely, matching the
// retain-prior-values update contract. Optional rules always skip
// absent fields rather than defaulting them.
type Rule struct {
	Field    string
	Label    string   // display name used in messages; defaults to Field
	Kind     Kind
	Required bool
	Min      *int64   // minimum value for Int fields
	MinLen   int      // minimum length for String fields
	Enum     []string // allowed values for String fields
	Escape   bool     // neutralize markup-significant characters
}

// MinInt is a convenience for building Rule.Min values.
func MinInt(n int64) *int64 { return &n }

// Validate runs the rules against body and returns a normalized copy of
// it plus every violation found, ordered by rule order. Normalization
// makes the map safe to decode into typed input structs: Int values
// become int64, Decimal values become their canonical string form, and
// escaped strings are replaced by their sanitized form.
func Validate(body map[string]any, rules []Rule, partial bool) (map[string]any, []FieldError) {
	out := make(map[string]any, len(body))
	for k, v := range body {
		out[k] = v
	}
	var errs []FieldError
	for _, r := range rules {
		label := r.Label
		if label == "" {
			label = r.Field
		}
		v, ok := body[r.Field]
		if !ok || v == nil {
			if r.Required && !partial {
				errs = append(errs, FieldError{r.Field, label + " est requis"})
			}
			continue
		}
		switch r.Kind {
		case String:
			s, isStr := v.(string)
			if !isStr {
				errs = append(errs, FieldError{r.Field, label + " doit être une chaîne de caractères"})
				continue
			}
			if r.Required && strings.TrimSpace(s) == "" {
				errs = append(errs, FieldError{r.Field, label + " est requis"})
				continue
			}
			if r.MinLen > 0 && len([]rune(s)) < r.MinLen {
				errs = append(errs, FieldError{r.Field, fmt.Sprintf("%s doit contenir au moins %d caractères", label, r.MinLen)})
				continue
			}
			if len(r.Enum) > 0 && !contains(r.Enum, s) {
				errs = append(errs, FieldError{r.Field, label + " invalide"})
				continue
			}
			if r.Escape {
				out[r.Field] = EscapeMarkup(s)
			}
		case Int:
			n, isInt := asInt(v)
			if !isInt {
				errs = append(errs, FieldError{r.Field, label + " doit être un entier"})
				continue
			}
			if r.Min != nil && n < *r.Min {
				if *r.Min > 0 {
					errs = append(errs, FieldError{r.Field, label + " doit être un entier positif"})
				} else {
					errs = append(errs, FieldError{r.Field, label + " doit être un entier non négatif"})
				}
				continue
			}
			out[r.Field] = n
		case Decimal:
			s, isDec := asDecimal(v)
			if !isDec {
				errs = append(errs, FieldError{r.Field, label + " doit être un nombre décimal"})
				continue
			}
			out[r.Field] = s
		case Date:
			s, isStr := v.(string)
			if !isStr || !validDate(s) {
				errs = append(errs, FieldError{r.Field, "Format de date invalide (YYYY-MM-DD)"})
				continue
			}
		}
	}
	return out, errs
}

// asInt accepts a whole JSON number or a digit string.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// asDecimal accepts a JSON number or a decimal string and returns the
// canonical string form stored in DECIMAL columns.
func asDecimal(v any) (string, bool) {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', 2, 64), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return "", false
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return "", false
		}
		return s, true
	}
	return "", false
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func contains(set []string, s string) bool {
	for _, e := range set {
		if e == s {
			return true
		}
	}
	return false
}

// escapeReplacer neutralizes the characters significant to HTML markup,
// producing the same entities express-style escaping does.
var escapeReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// EscapeMarkup returns s with markup-significant characters replaced by
// their HTML entities.
func EscapeMarkup(s string) string {
	return escapeReplacer.Replace(s)
}

// emailPattern accepts addr-spec shapes of the form local@domain.tld
// with no whitespace and a dotted domain. It is deliberately stricter
// than "contains an @": bare "@", missing local parts and TLD-less
// domains are all rejected.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmail reports whether s is structurally a valid email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IntID parses a path identifier, accepting only base-10 integers.
func IntID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
