package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/andredale-lab/One-Coffee/internal/apperr"
	"github.com/andredale-lab/One-Coffee/internal/models"
	"github.com/andredale-lab/One-Coffee/internal/repository"
)

const communityPageSize = 50

// ProfileService backs the community view and the profile form.
type ProfileService struct {
	profiles repository.ProfileRepository
	log      *zap.SugaredLogger
}

func NewProfileService(profiles repository.ProfileRepository, log *zap.SugaredLogger) *ProfileService {
	return &ProfileService{profiles: profiles, log: log}
}

func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	p, err := s.profiles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("profile %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("load profile: %w", apperr.ErrTransient)
	}
	return p, nil
}

// ListCommunity returns other users' profiles for the community grid.
func (s *ProfileService) ListCommunity(ctx context.Context, viewerID string) ([]*models.Profile, error) {
	out, err := s.profiles.List(ctx, viewerID, communityPageSize)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", apperr.ErrTransient)
	}
	return out, nil
}

// ProfileUpdate carries the editable fields of the profile form.
type ProfileUpdate struct {
	FullName     string `json:"full_name"`
	Interests    string `json:"interests"`
	AvatarURL    string `json:"avatar_url"`
	Availability string `json:"availability"`
}

func (s *ProfileService) Update(ctx context.Context, userID, email string, upd ProfileUpdate) (*models.Profile, error) {
	fullName := strings.TrimSpace(upd.FullName)
	if fullName == "" {
		return nil, fmt.Errorf("empty full_name: %w", apperr.ErrInvalidArgument)
	}
	now := time.Now().UTC()
	p := &models.Profile{
		ID:           userID,
		Email:        email,
		FullName:     fullName,
		Interests:    strings.TrimSpace(upd.Interests),
		AvatarURL:    strings.TrimSpace(upd.AvatarURL),
		Availability: strings.TrimSpace(upd.Availability),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if existing, err := s.profiles.Get(ctx, userID); err == nil {
		p.CreatedAt = existing.CreatedAt
		if email == "" {
			p.Email = existing.Email
		}
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("save profile: %w", apperr.ErrTransient)
	}
	return p, nil
}
