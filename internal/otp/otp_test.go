package otp

import (
	"strconv"
	"testing"
	"time"

	"github.com/example/veloria/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(code string, createdAt time.Time) models.OTPCode {
	e := models.OTPCode{Code: code, ExpiresAt: createdAt.Add(TTL)}
	e.CreatedAt = createdAt
	return e
}

func TestGenerate(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestIssue(t *testing.T) {
	now := time.Now()
	userID := uuid.New()

	e, err := Issue(userID, now)
	require.NoError(t, err)
	assert.Equal(t, userID, e.UserID)
	assert.Equal(t, now.Add(10*time.Minute), e.ExpiresAt)
	assert.Len(t, e.Code, 6)
}

func TestVerify(t *testing.T) {
	now := time.Now()

	t.Run("no codes", func(t *testing.T) {
		assert.Equal(t, VerifyNoCodes, Verify(nil, "123456", now))
	})

	t.Run("valid code", func(t *testing.T) {
		entries := []models.OTPCode{entry("111111", now.Add(-time.Minute))}
		assert.Equal(t, VerifyOK, Verify(entries, "111111", now))
	})

	t.Run("expired code is distinct from invalid", func(t *testing.T) {
		entries := []models.OTPCode{entry("111111", now.Add(-time.Hour))}
		assert.Equal(t, VerifyExpired, Verify(entries, "111111", now))
		assert.Equal(t, VerifyInvalid, Verify(entries, "222222", now))
	})

	t.Run("newest matching entry wins over expired duplicate", func(t *testing.T) {
		entries := []models.OTPCode{
			entry("111111", now.Add(-time.Hour)),
			entry("111111", now.Add(-time.Minute)),
		}
		assert.Equal(t, VerifyOK, Verify(entries, "111111", now))
	})

	t.Run("boundary: code at exact expiry is expired", func(t *testing.T) {
		entries := []models.OTPCode{entry("111111", now.Add(-TTL))}
		assert.Equal(t, VerifyExpired, Verify(entries, "111111", now))
	})
}

func TestTrim(t *testing.T) {
	now := time.Now()
	var entries []models.OTPCode
	for i := 0; i < 8; i++ {
		entries = append(entries, entry("00000"+strconv.Itoa(i), now.Add(time.Duration(i)*time.Minute)))
	}

	keep, evict := Trim(entries, MaxHistory)
	require.Len(t, keep, MaxHistory-1)
	require.Len(t, evict, 4)
	// The most recent prior entries survive, oldest are evicted.
	assert.Equal(t, "000004", keep[0].Code)
	assert.Equal(t, "000007", keep[len(keep)-1].Code)
	assert.Equal(t, "000000", evict[0].Code)

	t.Run("short list untouched", func(t *testing.T) {
		keep, evict := Trim(entries[:2], MaxHistory)
		assert.Len(t, keep, 2)
		assert.Empty(t, evict)
	})
}

// Simulates N resends: the stored list never exceeds MaxHistory and the
// newest entry is always the most recently generated.
func TestResendCap(t *testing.T) {
	now := time.Now()
	var stored []models.OTPCode
	for i := 0; i < 9; i++ {
		stored, _ = Trim(stored, MaxHistory)
		stored = append(stored, entry("90000"+strconv.Itoa(i), now.Add(time.Duration(i)*time.Minute)))
		assert.LessOrEqual(t, len(stored), MaxHistory)
	}
	assert.Equal(t, "900008", stored[len(stored)-1].Code)
}
