package firebase

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

// TokenVerifier is the part of the Firebase auth client the service uses.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

var verifier TokenVerifier

func InitFirebaseSdk(ctx context.Context) error {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return fmt.Errorf("error initializing app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return fmt.Errorf("error getting Auth client: %w", err)
	}
	verifier = client
	return nil
}

// SetVerifier replaces the token verifier, e.g. with a stub in tests.
func SetVerifier(v TokenVerifier) {
	verifier = v
}

func VerifyIdToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if verifier == nil {
		return nil, errors.New("firebase auth is not initialized")
	}
	return verifier.VerifyIDToken(ctx, idToken)
}
