// Package policy implements the password strength rules applied when an
// account holder changes their password.
package policy

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Identity carries the account attributes a new password is checked
// against. FirstName and LastName come from the profile as stored,
// including the "None" placeholder on profiles that were never edited.
type Identity struct {
	Username  string
	FirstName string
	LastName  string
}

// ErrWrongCurrentPassword is returned before any of the content rules
// run when the caller fails to re-authenticate.
var ErrWrongCurrentPassword = errors.New("wrong current password provided")

// ViolationMessage is the single combined message reported for any
// content-rule failure. Callers depend on the exact text.
const ViolationMessage = "Password must:\n " +
	"be 14 or more symbols long\n" +
	"include upper and lowercase letters\n" +
	"include special characters\n" +
	"include one or more digits\n" +
	"NOT be same as current password."

// ErrPolicyViolation aggregates every content-rule failure. The rules
// are deliberately not reported individually.
var ErrPolicyViolation = errors.New(ViolationMessage)

var (
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`\W`)
)

// ValidateChange checks a proposed password change in two phases.
// Phase 1 verifies the current password via the supplied callback and
// fails immediately with ErrWrongCurrentPassword. Phase 2 evaluates all
// content rules without short-circuiting and fails with the one
// combined ErrPolicyViolation if any rule is violated.
func ValidateChange(id Identity, verify func(password string) bool, oldPassword, newPassword, confirmPassword string) error {
	if !verify(oldPassword) {
		return ErrWrongCurrentPassword
	}

	lower := strings.ToLower(newPassword)

	mismatch := newPassword != confirmPassword
	noChange := oldPassword == newPassword
	tooShort := utf8.RuneCountInString(newPassword) < 14
	noCase := newPassword == strings.ToUpper(newPassword) || newPassword == strings.ToLower(newPassword)
	noDigit := !digitRe.MatchString(newPassword)
	noSpecial := !specialRe.MatchString(newPassword)
	containsIdentity := strings.Contains(lower, strings.ToLower(id.FirstName)) ||
		strings.Contains(lower, strings.ToLower(id.LastName)) ||
		strings.Contains(lower, strings.ToLower(id.Username))

	if mismatch || noChange || tooShort || noCase || noDigit || noSpecial || containsIdentity {
		return ErrPolicyViolation
	}
	return nil
}
