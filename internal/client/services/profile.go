package services

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/common"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

// MinPasswordLength is the shortest password accepted when choosing one.
const MinPasswordLength = 8

// Snapshotter is the part of the session that keeps the profile snapshot.
type Snapshotter interface {
	Current() *models.Session
	UpdateSnapshot(ctx context.Context, user models.User) error
}

// ProfileService reads and edits the signed-in user's profile.
//
// Contract:
//   - Get: fetch the profile and refresh the persisted snapshot.
//   - Update: save full name and bio, then merge them into the snapshot.
//   - ChangePassword: verify locally, then ask the server to switch.
type ProfileService interface {
	Get(ctx context.Context) (*models.User, error)
	Update(ctx context.Context, p models.Profile) (*models.User, error)
	ChangePassword(ctx context.Context, current, next, confirm string) error
}

type profileService struct {
	api     client.ProfileAPI
	session Snapshotter
	timeout time.Duration
	log     logging.Logger
}

func NewProfileService(api client.ProfileAPI, session Snapshotter, timeout time.Duration, log logging.Logger) ProfileService {
	return &profileService{api: api, session: session, timeout: timeout, log: log}
}

func (s *profileService) Get(ctx context.Context) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.api.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if err := s.session.UpdateSnapshot(ctx, *user); err != nil {
		s.log.Warn(ctx, "failed to refresh profile snapshot", "error", err)
	}
	return user, nil
}

func (s *profileService) Update(ctx context.Context, p models.Profile) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	saved, err := s.api.UpdateProfile(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	var user models.User
	if cur := s.session.Current(); cur.Hydrated() {
		user = *cur.User
	}
	user.FullName = saved.FullName
	user.Bio = saved.Bio

	if err := s.session.UpdateSnapshot(ctx, user); err != nil {
		s.log.Warn(ctx, "failed to refresh profile snapshot", "error", err)
	}
	s.log.Info(ctx, "profile updated", "username", user.Username)
	return &user, nil
}

func (s *profileService) ChangePassword(ctx context.Context, current, next, confirm string) error {
	if current == "" {
		return fmt.Errorf("current password is required: %w", common.ErrConflict)
	}
	if err := ValidateNewPassword(next, confirm); err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.api.ChangePassword(ctx, current, next); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	s.log.Info(ctx, "password changed")
	return nil
}

// ValidateNewPassword applies the local checks made before a new password
// is sent anywhere.
func ValidateNewPassword(next, confirm string) error {
	if next != confirm {
		return fmt.Errorf("passwords do not match: %w", common.ErrConflict)
	}
	if utf8.RuneCountInString(next) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long: %w", MinPasswordLength, common.ErrConflict)
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
