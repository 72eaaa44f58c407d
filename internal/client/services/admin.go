package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/common"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

const DefaultPageSize = 20

// AdminChecker reports whether the current session carries the admin flag.
type AdminChecker interface {
	IsAdmin() bool
}

// AdminService exposes the admin views. Every method fails with
// common.ErrForbidden before touching the network when the session is not
// an admin one.
type AdminService interface {
	Stats(ctx context.Context) (*models.StatsOverview, error)
	Users(ctx context.Context, f models.UserFilter) (*models.UserList, error)
	Block(ctx context.Context, userID int64) error
	Unblock(ctx context.Context, userID int64) error
}

type adminService struct {
	api     client.AdminAPI
	session AdminChecker
	timeout time.Duration
	log     logging.Logger
}

func NewAdminService(api client.AdminAPI, session AdminChecker, timeout time.Duration, log logging.Logger) AdminService {
	return &adminService{api: api, session: session, timeout: timeout, log: log}
}

func (s *adminService) authorize() error {
	if !s.session.IsAdmin() {
		return fmt.Errorf("admin view: %w", common.ErrForbidden)
	}
	return nil
}

func (s *adminService) Stats(ctx context.Context) (*models.StatsOverview, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	stats, err := s.api.AdminStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	return stats, nil
}

func (s *adminService) Users(ctx context.Context, f models.UserFilter) (*models.UserList, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	switch f.Status {
	case "", "all", "active", "blocked":
	default:
		return nil, fmt.Errorf("unknown user status %q: %w", f.Status, common.ErrConflict)
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	list, err := s.api.AdminUsers(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("admin users: %w", err)
	}
	return list, nil
}

func (s *adminService) Block(ctx context.Context, userID int64) error {
	return s.setBlocked(ctx, userID, true)
}

func (s *adminService) Unblock(ctx context.Context, userID int64) error {
	return s.setBlocked(ctx, userID, false)
}

func (s *adminService) setBlocked(ctx context.Context, userID int64, blocked bool) error {
	if err := s.authorize(); err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.api.SetUserBlocked(ctx, userID, blocked); err != nil {
		return fmt.Errorf("set user %d blocked=%t: %w", userID, blocked, err)
	}
	s.log.Info(ctx, "user block state changed", "user_id", userID, "blocked", blocked)
	return nil
}
