package googleauth

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/idtoken"
)

// Identity is the subset of a verified Google ID token the handlers need.
type Identity struct {
	Email   string
	Name    string
	Subject string
}

// Verifier checks a Google-issued ID token assertion. Handlers depend on
// the interface so tests can substitute a stub.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

type googleVerifier struct {
	clientID string
}

func New(clientID string) Verifier {
	return &googleVerifier{clientID: clientID}
}

func (v *googleVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate google token: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if email == "" {
		return nil, fmt.Errorf("google token has no email")
	}

	return &Identity{
		Email:   email,
		Name:    name,
		Subject: payload.Subject,
	}, nil
}
