package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/repositories/files"
	"github.com/dmitrijs2005/docchat/internal/common"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

// Listing is a document list together with where it came from.
type Listing struct {
	Files []models.FileRecord
	// Stale is set when the list was served from the offline cache.
	Stale bool
}

// LibraryService lists the documents stored on the server.
type LibraryService interface {
	List(ctx context.Context) (Listing, error)
}

type libraryService struct {
	api     client.FileAPI
	cache   files.Repository
	timeout time.Duration
	log     logging.Logger
}

// NewLibraryService creates the service; cache may be nil.
func NewLibraryService(api client.FileAPI, cache files.Repository, timeout time.Duration, log logging.Logger) LibraryService {
	return &libraryService{api: api, cache: cache, timeout: timeout, log: log}
}

func (s *libraryService) List(ctx context.Context) (Listing, error) {
	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	list, err := s.api.ListFiles(callCtx)
	if err != nil {
		if errors.Is(err, common.ErrTransport) && s.cache != nil {
			cached, cacheErr := s.cache.List(ctx)
			if cacheErr == nil && len(cached) > 0 {
				s.log.Warn(ctx, "server unreachable, serving cached files", "error", err, "count", len(cached))
				return Listing{Files: cached, Stale: true}, nil
			}
		}
		return Listing{}, fmt.Errorf("list files: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.ReplaceAll(ctx, list); err != nil {
			s.log.Warn(ctx, "failed to cache files", "error", err)
		}
	}
	return Listing{Files: list}, nil
}
