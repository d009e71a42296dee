package transaction

import (
	"fmt"
	"regexp"
)

// Account ID length limits.
const (
	MinAccountIDLen = 2
	MaxAccountIDLen = 64
)

// accountIDRe matches dot-separated parts of lowercase alphanumerics joined
// by single '-' or '_' separators.
var accountIDRe = regexp.MustCompile(`^(([a-z\d]+[\-_])*[a-z\d]+\.)*([a-z\d]+[\-_])*[a-z\d]+$`)

// ValidateAccountID checks that s is a well-formed account ID.
func ValidateAccountID(s string) error {
	if len(s) < MinAccountIDLen || len(s) > MaxAccountIDLen {
		return fmt.Errorf("account ID %q must be %d to %d characters long", s, MinAccountIDLen, MaxAccountIDLen)
	}
	if !accountIDRe.MatchString(s) {
		return fmt.Errorf("invalid account ID %q", s)
	}
	return nil
}
