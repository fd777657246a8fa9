package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/day-booking/internal/logger"
	"github.com/iliyamo/day-booking/internal/model"
	"github.com/iliyamo/day-booking/internal/repository"
)

// ProfileService loads and saves the single user profile.
type ProfileService struct {
	repo *repository.ProfileRepo
	log  logger.Logger
}

func NewProfileService(repo *repository.ProfileRepo, log logger.Logger) *ProfileService {
	if repo == nil {
		panic("nil repository passed to NewProfileService")
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ProfileService{repo: repo, log: log}
}

// Get returns the saved profile or an empty one on first run.
func (s *ProfileService) Get(ctx context.Context) (model.Profile, error) {
	p, _, err := s.repo.Get(ctx)
	return p, err
}

// Save validates p and overwrites the stored profile.
func (s *ProfileService) Save(ctx context.Context, p model.Profile) (model.Profile, error) {
	if err := p.Validate(); err != nil {
		return model.Profile{}, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return model.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	s.log.Info("profile updated")
	return p, nil
}
