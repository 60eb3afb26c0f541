package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ubae_shell/internal/model"
	"ubae_shell/internal/query"
)

// AuthAPI is the upstream surface for the current user's session.
type AuthAPI interface {
	GetAuthUser(ctx context.Context) (*model.User, error)
	Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.User, error)
	Logout(ctx context.Context) error
	CompleteOnboarding(ctx context.Context, req *model.OnboardingRequest) (*model.User, error)
}

// AuthService runs the session mutations. Each success invalidates the
// current-user query; the session is never written directly.
type AuthService struct {
	api         AuthAPI
	invalidator query.Invalidator
}

func NewAuthService(api AuthAPI, invalidator query.Invalidator) *AuthService {
	return &AuthService{
		api:         api,
		invalidator: invalidator,
	}
}

func (s *AuthService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	user, err := s.api.Signup(ctx, req)
	if err != nil {
		log.Printf("[AuthService] Signup FAILED: email=%s err=%v", req.Email, err)
		return nil, err
	}
	s.invalidator.Invalidate(query.KeyAuthUser)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.api.Login(ctx, req)
	if err != nil {
		log.Printf("[AuthService] Login FAILED: email=%s err=%v", req.Email, err)
		if isClientError(err) {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidCredentials, err)
		}
		return nil, err
	}
	s.invalidator.Invalidate(query.KeyAuthUser)
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		log.Printf("[AuthService] Logout FAILED: err=%v", err)
		return err
	}
	s.invalidator.Invalidate(query.KeyAuthUser)
	return nil
}

func (s *AuthService) CompleteOnboarding(ctx context.Context, req *model.OnboardingRequest) (*model.User, error) {
	user, err := s.api.CompleteOnboarding(ctx, req)
	if err != nil {
		log.Printf("[AuthService] CompleteOnboarding FAILED: err=%v", err)
		return nil, err
	}
	s.invalidator.Invalidate(query.KeyAuthUser)
	return user, nil
}

// isClientError reports whether the upstream rejected the request itself,
// as opposed to being unreachable or failing.
func isClientError(err error) bool {
	var ce interface{ IsClientError() bool }
	return errors.As(err, &ce) && ce.IsClientError()
}
