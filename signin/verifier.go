package signin

import (
	"context"
	"errors"
)

// ErrInvalidCredentials is returned by verifiers for rejected credentials.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is the identity established at sign-in.
type User struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
}

// Verifier checks a user name and password.
type Verifier interface {
	Verify(ctx context.Context, userName, password string) (User, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, userName, password string) (User, error)

func (f VerifierFunc) Verify(ctx context.Context, userName, password string) (User, error) {
	return f(ctx, userName, password)
}

// StubVerifier accepts any non-empty credentials and returns User, or the
// built-in test user when User is zero.
type StubVerifier struct {
	User User
}

var stubUser = User{ID: "12345678990", UserName: "test"}

func (s StubVerifier) Verify(ctx context.Context, userName, password string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if userName == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}
	if s.User.ID != "" {
		return s.User, nil
	}
	return stubUser, nil
}
