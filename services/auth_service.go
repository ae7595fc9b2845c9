package services

import (
	"context"
	"fmt"

	"github.com/phillip/nft-ticketing-go/clock"
	"github.com/phillip/nft-ticketing-go/models"
)

type AuthService struct {
	users UserRepository
	clock clock.Clock
}

func NewAuthService(users UserRepository, clk clock.Clock) *AuthService {
	return &AuthService{users: users, clock: clk}
}

type CallbackInput struct {
	DID  string
	Name string
	// Email comes from a verified identity token, never from the request body.
	Email string
}

// Callback resolves the user behind a DID issued by the identity provider,
// creating an attendee on first contact. Existing users keep their role and
// name; a verified email is recorded when it changed.
func (s *AuthService) Callback(ctx context.Context, in CallbackInput) (*models.User, error) {
	if in.DID == "" {
		return nil, models.MissingField("did")
	}
	name := in.Name
	if name == "" {
		name = models.DefaultUserName
	}

	user, err := s.users.FindOrCreate(ctx, in.DID, name, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	if in.Email != "" && in.Email != user.Email {
		if err := s.users.SetEmail(ctx, in.DID, in.Email); err != nil {
			return nil, fmt.Errorf("record email: %w", err)
		}
		user.Email = in.Email
	}
	return user, nil
}
