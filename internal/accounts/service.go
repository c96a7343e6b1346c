package accounts

import (
	"context"
	"errors"
	"strings"

	"projectshelf-backend/internal/auth"
	"projectshelf-backend/internal/store"
	"projectshelf-backend/internal/themes"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrUnknownTheme       = errors.New("unknown theme")
	ErrNotFound           = store.ErrNotFound
)

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Register creates an account. Username and email uniqueness is checked
// up front so callers get a field-level error, with the store's unique
// constraints as the backstop under concurrent registration.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (store.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return store.User{}, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.User{}, err
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return store.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.User{}, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return store.User{}, err
	}

	user, err := s.store.CreateUser(ctx, store.NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Theme:        themes.DefaultID,
		SocialLinks:  map[string]string{},
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return store.User{}, ErrUsernameTaken
		}
		return store.User{}, err
	}
	return user, nil
}

// Login resolves the identifier as a username first, then as an email.
func (s *Service) Login(ctx context.Context, identifier, password string) (store.User, error) {
	identifier = strings.TrimSpace(identifier)

	user, err := s.store.GetUserByUsername(ctx, identifier)
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.store.GetUserByEmail(ctx, strings.ToLower(identifier))
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.User{}, ErrInvalidCredentials
		}
		return store.User{}, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return store.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, userID int64) (store.User, error) {
	return s.store.GetUser(ctx, userID)
}

// UpdateProfile applies a partial update, re-checking uniqueness when the
// username or email changes and rejecting unknown theme ids.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, req ProfileRequest) (store.User, error) {
	current, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return store.User{}, err
	}

	patch := store.UserPatch{
		Name:         req.Name,
		Bio:          req.Bio,
		ProfileImage: req.ProfileImage,
		SocialLinks:  req.SocialLinks,
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if !strings.EqualFold(username, current.Username) {
			if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
				return store.User{}, ErrUsernameTaken
			} else if !errors.Is(err, store.ErrNotFound) {
				return store.User{}, err
			}
		}
		patch.Username = &username
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !strings.EqualFold(email, current.Email) {
			if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
				return store.User{}, ErrEmailTaken
			} else if !errors.Is(err, store.ErrNotFound) {
				return store.User{}, err
			}
		}
		patch.Email = &email
	}
	if req.Theme != nil {
		if !themes.IsKnown(*req.Theme) {
			return store.User{}, ErrUnknownTheme
		}
		patch.Theme = req.Theme
	}

	user, err := s.store.UpdateUser(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return store.User{}, ErrUsernameTaken
		}
		return store.User{}, err
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *Service) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return ErrWrongPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	_, err = s.store.UpdateUser(ctx, userID, store.UserPatch{PasswordHash: &hash})
	return err
}
