package services

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/idtoken"
)

// Errors returned by GoogleVerifier implementations so handlers can report
// an expired token distinctly from a malformed one.
var (
	ErrGoogleTokenExpired = errors.New("google token expired")
	ErrGoogleTokenInvalid = errors.New("google token invalid")
)

// GoogleTokenPayload is the subset of the verified ID-token claims the
// application cares about.
type GoogleTokenPayload struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier checks a Google ID token and extracts its payload.
type GoogleVerifier interface {
	Verify(ctx context.Context, rawToken string) (*GoogleTokenPayload, error)
}

type googleVerifier struct {
	clientID string
}

// NewGoogleVerifier returns a verifier validating tokens against the given
// OAuth client ID.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID}
}

func (v *googleVerifier) Verify(ctx context.Context, rawToken string) (*GoogleTokenPayload, error) {
	payload, err := idtoken.Validate(ctx, rawToken, v.clientID)
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return nil, ErrGoogleTokenExpired
		}
		return nil, ErrGoogleTokenInvalid
	}

	result := &GoogleTokenPayload{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		result.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		result.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		result.Picture = picture
	}

	if result.Email == "" {
		return nil, ErrGoogleTokenInvalid
	}

	return result, nil
}
