package security

import (
	"bufio"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	maxSimilarity     = 0.7
)

// PasswordProblem is one failed strength rule.
type PasswordProblem struct {
	Rule    string
	Message string
}

// UserAttribute is a value the password must not resemble, with the label
// used in the error message.
type UserAttribute struct {
	Label string
	Value string
}

//go:embed common_passwords.txt
var commonPasswordsRaw string

var (
	commonOnce      sync.Once
	commonPasswords map[string]struct{}
	nonWord         = regexp.MustCompile(`\W+`)
)

// ValidatePassword applies the strength rules in order and returns every
// rule the password breaks. An empty result means the password is accepted.
func ValidatePassword(password string, attrs ...UserAttribute) []PasswordProblem {
	var problems []PasswordProblem

	if p, ok := similarTo(password, attrs); ok {
		problems = append(problems, p)
	}

	if utf8.RuneCountInString(password) < MinPasswordLength {
		problems = append(problems, PasswordProblem{
			Rule:    "password_too_short",
			Message: fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLength),
		})
	}

	if isCommon(password) {
		problems = append(problems, PasswordProblem{
			Rule:    "password_too_common",
			Message: "This password is too common.",
		})
	}

	if isNumeric(password) {
		problems = append(problems, PasswordProblem{
			Rule:    "password_entirely_numeric",
			Message: "This password is entirely numeric.",
		})
	}

	return problems
}

func similarTo(password string, attrs []UserAttribute) (PasswordProblem, bool) {
	pw := strings.ToLower(password)

	for _, attr := range attrs {
		value := strings.ToLower(strings.TrimSpace(attr.Value))
		if value == "" {
			continue
		}

		parts := append(nonWord.Split(value, -1), value)
		for _, part := range parts {
			if part == "" || exceedsLengthRatio(pw, part) {
				continue
			}

			if quickRatio(pw, part) >= maxSimilarity {
				return PasswordProblem{
					Rule:    "password_too_similar",
					Message: "The password is too similar to the " + attr.Label + ".",
				}, true
			}
		}
	}

	return PasswordProblem{}, false
}

// a long password is not flagged for resembling a very short attribute
func exceedsLengthRatio(password, value string) bool {
	pwLen := utf8.RuneCountInString(password)
	valueLen := utf8.RuneCountInString(value)
	bound := maxSimilarity / 2 * float64(pwLen)

	return pwLen >= 10*valueLen && float64(valueLen) < bound
}

// quickRatio is an upper bound on sequence similarity computed from the
// multiset of shared characters: 2*M / (len(a)+len(b)).
func quickRatio(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1
	}

	avail := make(map[rune]int, len(br))
	for _, r := range br {
		avail[r]++
	}

	matches := 0
	for _, r := range ar {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}

	return 2 * float64(matches) / float64(total)
}

func isNumeric(password string) bool {
	if password == "" {
		return false
	}

	for _, r := range password {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}

func isCommon(password string) bool {
	commonOnce.Do(func() {
		commonPasswords = make(map[string]struct{})
		sc := bufio.NewScanner(strings.NewReader(commonPasswordsRaw))
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			commonPasswords[strings.ToLower(line)] = struct{}{}
		}
	})

	_, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]
	return ok
}
