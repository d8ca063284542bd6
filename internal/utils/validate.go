package utils

import "regexp"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// Generic phone shape: 10-15 digits, optional leading +, optional
	// spaces/hyphens between digit groups.
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{8,18}$`)
	phoneDigits  = regexp.MustCompile(`[0-9]`)

	// Firebase phone registration is stricter: one country code, fixed
	// local digit pattern.
	strictPhonePattern = regexp.MustCompile(`^\+91[6-9][0-9]{9}$`)
)

// IsEmail reports whether s has the local@domain.tld shape.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsPhone reports whether s is an acceptable phone number for the OTP flow.
func IsPhone(s string) bool {
	if !phonePattern.MatchString(s) {
		return false
	}
	digits := len(phoneDigits.FindAllString(s, -1))
	return digits >= 10 && digits <= 15
}

// IsStrictPhone reports whether s matches the phone-registration format.
func IsStrictPhone(s string) bool {
	return strictPhonePattern.MatchString(s)
}
