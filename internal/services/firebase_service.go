package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const identityToolkitURL = "https://identitytoolkit.googleapis.com/v1/accounts:lookup"

// PhoneAssertion is an externally verified proof of phone-number control.
type PhoneAssertion struct {
	PhoneNumber string
	SubjectID   string
}

// PhoneVerifier resolves an opaque assertion string (a Firebase ID token)
// into a verified phone number, or fails.
type PhoneVerifier interface {
	VerifyAssertion(ctx context.Context, assertion string) (PhoneAssertion, error)
}

// ErrAssertionInvalid is returned when the identity service rejects the
// assertion or it carries no phone number.
var ErrAssertionInvalid = errors.New("phone assertion invalid")

// FirebaseVerifier verifies phone assertions against the Firebase Identity
// Toolkit REST API.
type FirebaseVerifier struct {
	apiKey string
	client *http.Client
}

// NewFirebaseVerifier constructs a FirebaseVerifier.
func NewFirebaseVerifier(apiKey string) *FirebaseVerifier {
	return &FirebaseVerifier{
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type lookupRequest struct {
	IDToken string `json:"idToken"`
}

type lookupResponse struct {
	Users []struct {
		LocalID     string `json:"localId"`
		PhoneNumber string `json:"phoneNumber"`
	} `json:"users"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// VerifyAssertion resolves the Firebase ID token to its verified phone
// number and subject id.
func (v *FirebaseVerifier) VerifyAssertion(ctx context.Context, assertion string) (PhoneAssertion, error) {
	if v.apiKey == "" {
		return PhoneAssertion{}, errors.New("firebase api key not configured")
	}
	if assertion == "" {
		return PhoneAssertion{}, ErrAssertionInvalid
	}

	payload, err := json.Marshal(lookupRequest{IDToken: assertion})
	if err != nil {
		return PhoneAssertion{}, err
	}

	url := fmt.Sprintf("%s?key=%s", identityToolkitURL, v.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return PhoneAssertion{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return PhoneAssertion{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return PhoneAssertion{}, err
	}

	var parsed lookupResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return PhoneAssertion{}, err
	}

	if resp.StatusCode != http.StatusOK || parsed.Error != nil {
		return PhoneAssertion{}, fmt.Errorf("%w: identity service status %d", ErrAssertionInvalid, resp.StatusCode)
	}
	if len(parsed.Users) == 0 || parsed.Users[0].PhoneNumber == "" {
		return PhoneAssertion{}, ErrAssertionInvalid
	}

	return PhoneAssertion{
		PhoneNumber: parsed.Users[0].PhoneNumber,
		SubjectID:   parsed.Users[0].LocalID,
	}, nil
}
