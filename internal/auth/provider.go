package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// ErrInvalidIdentity is returned when a sign-in submission cannot be resolved
// to a usable identity.
var ErrInvalidIdentity = errors.New("auth: invalid identity")

// Provider resolves a sign-in submission to an identity. Deployments fronted
// by an external identity service supply their own implementation.
type Provider interface {
	Authenticate(ctx context.Context, email, name string) (Identity, error)
}

// FormProvider accepts identities straight from the sign-in form after a
// syntax check on the address. It performs no external verification.
type FormProvider struct{}

// Authenticate validates the submitted address and returns the identity.
func (FormProvider) Authenticate(_ context.Context, email, name string) (Identity, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return Identity{Email: email, Name: strings.TrimSpace(name)}, nil
}
