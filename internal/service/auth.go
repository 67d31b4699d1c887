package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/skilledge/skilledge-server/internal/logger"
	"github.com/skilledge/skilledge-server/internal/model"
)

type Auth struct {
	userStore    model.UserStore
	tokenManager model.TokenManager
	logger       *logger.Logger
	cost         int
}

func NewAuth(userStore model.UserStore, tokenManager model.TokenManager, logger *logger.Logger) *Auth {
	return &Auth{
		userStore:    userStore,
		tokenManager: tokenManager,
		logger:       logger,
		cost:         bcrypt.DefaultCost,
	}
}

func validateCredentials(name, password string) error {
	if name == "" {
		return model.NewValidationError("name", "missing name")
	}
	if password == "" {
		return model.NewValidationError("password", "missing password")
	}
	return nil
}

// Register sets a password on name. A user that so far only exists through
// sync or join can claim it; a name that already has a password cannot.
func (a *Auth) Register(ctx context.Context, name, password string) (string, model.User, error) {
	a.logger.Debug("Auth service: registering user", "name", name)

	if err := validateCredentials(name, password); err != nil {
		return "", model.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return "", model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.userStore.Mutate(ctx, name, func(user *model.User) error {
		if user.PasswordHash != "" {
			return model.ErrAlreadyExists
		}
		user.PasswordHash = string(hash)
		return nil
	})
	if errors.Is(err, model.ErrAlreadyExists) {
		a.logger.Info("Auth service: name already registered", "name", name)
		return "", model.User{}, err
	}
	if err != nil {
		a.logger.Error("Auth service: failed to store user",
			"name", name,
			"error", err.Error())
		return "", model.User{}, fmt.Errorf("failed to register user: %w", err)
	}

	token, err := a.issue(user)
	if err != nil {
		return "", model.User{}, err
	}

	a.logger.Info("Auth service: user registered", "name", name, "user_id", user.ID.String())
	return token, user, nil
}

// Login checks the password of name and issues an access token.
func (a *Auth) Login(ctx context.Context, name, password string) (string, model.User, error) {
	a.logger.Debug("Auth service: logging in user", "name", name)

	if err := validateCredentials(name, password); err != nil {
		return "", model.User{}, err
	}

	user, err := a.userStore.GetByName(ctx, name)
	if errors.Is(err, model.ErrNotFound) {
		return "", model.User{}, model.ErrInvalidCredentials
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user",
			"name", name,
			"error", err.Error())
		return "", model.User{}, fmt.Errorf("failed to get user by name: %w", err)
	}

	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		a.logger.Info("Auth service: invalid credentials", "name", name)
		return "", model.User{}, model.ErrInvalidCredentials
	}

	token, err := a.issue(user)
	if err != nil {
		return "", model.User{}, err
	}

	a.logger.Info("Auth service: user logged in", "name", name)
	return token, user, nil
}

// Me returns the record of the authenticated user.
func (a *Auth) Me(ctx context.Context, name string) (model.User, error) {
	user, err := a.userStore.GetByName(ctx, name)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by name: %w", err)
	}
	return user, nil
}

func (a *Auth) issue(user model.User) (string, error) {
	token, err := a.tokenManager.GenerateAccessToken(model.Identity{UserID: user.ID, Name: user.Name})
	if err != nil {
		a.logger.Error("Auth service: failed to issue token",
			"name", user.Name,
			"error", err.Error())
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return token, nil
}
