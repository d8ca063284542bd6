// Package otp implements the OTP-list operations shared by the email
// registration, verification and resend flows. The functions are pure over
// loaded []models.OTPCode slices; handlers persist the results.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/example/veloria/internal/models"
	"github.com/google/uuid"
)

// TTL is how long a code stays valid after issue.
const TTL = 10 * time.Minute

// MaxHistory caps an account's OTP list. On resend the existing list is
// trimmed to MaxHistory-1 entries before the new code is appended.
const MaxHistory = 5

// VerifyResult classifies a verification attempt.
type VerifyResult int

const (
	// VerifyOK means a code matched an unexpired entry.
	VerifyOK VerifyResult = iota
	// VerifyExpired means the code matched an entry whose expiry has passed.
	VerifyExpired
	// VerifyInvalid means the code matched no entry at all.
	VerifyInvalid
	// VerifyNoCodes means the account has no OTP entries to check.
	VerifyNoCodes
)

// Generate returns a 6-digit code uniform over 100000-999999.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Issue generates a fresh entry for the account, expiring TTL from now.
func Issue(userID uuid.UUID, now time.Time) (models.OTPCode, error) {
	code, err := Generate()
	if err != nil {
		return models.OTPCode{}, err
	}
	entry := models.OTPCode{
		UserID:    userID,
		Code:      code,
		ExpiresAt: now.Add(TTL),
	}
	entry.CreatedAt = now
	return entry, nil
}

// Verify scans entries newest to oldest and accepts the first whose code
// matches and whose expiry is still in the future. A matching-but-expired
// code is reported distinctly from a code that was never issued. Entries
// must be ordered oldest first (newest last), the order they are stored in.
func Verify(entries []models.OTPCode, code string, now time.Time) VerifyResult {
	if len(entries) == 0 {
		return VerifyNoCodes
	}

	matched := false
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Code != code {
			continue
		}
		if now.Before(entries[i].ExpiresAt) {
			return VerifyOK
		}
		matched = true
	}

	if matched {
		return VerifyExpired
	}
	return VerifyInvalid
}

// Trim returns the entries that survive a resend: the (cap-1) most recent
// prior entries, so that appending the new code leaves at most cap in total.
// Entries must be ordered oldest first.
func Trim(entries []models.OTPCode, size int) (keep, evict []models.OTPCode) {
	if size < 1 {
		return nil, entries
	}
	limit := size - 1
	if len(entries) <= limit {
		return entries, nil
	}
	cut := len(entries) - limit
	return entries[cut:], entries[:cut]
}
