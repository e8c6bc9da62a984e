package app

import (
	"context"
	"strings"
	"time"

	"disciple-assessment-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// ProfileService serves the profile and dashboard statistics.
type ProfileService struct {
	profiles ProfileRepository
	results  ResultRepository
	now      func() time.Time
}

func NewProfileService(profiles ProfileRepository, results ResultRepository) *ProfileService {
	return &ProfileService{profiles: profiles, results: results, now: time.Now}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (domain.Profile, error) {
	if userID == "" {
		return domain.Profile{}, domain.ErrUnauthenticated
	}
	return s.profiles.GetProfile(ctx, userID)
}

// Update changes the display name.
func (s *ProfileService) Update(ctx context.Context, userID, fullName string) (domain.Profile, error) {
	if userID == "" {
		return domain.Profile{}, domain.ErrUnauthenticated
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return domain.Profile{}, domain.ErrInvalidInput
	}
	return s.profiles.UpdateProfile(ctx, userID, fullName, s.now().UTC())
}

// Stats gathers profile, result count and latest completion concurrently.
func (s *ProfileService) Stats(ctx context.Context, userID string) (domain.UserStats, error) {
	if userID == "" {
		return domain.UserStats{}, domain.ErrUnauthenticated
	}

	var (
		profile domain.Profile
		count   int
		latest  domain.Result
		found   bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.profiles.GetProfile(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = s.results.Count(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		latest, found, err = s.results.Latest(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.UserStats{}, err
	}

	stats := domain.UserStats{
		Email:           profile.Email,
		FullName:        profile.FullName,
		MemberSince:     profile.CreatedAt,
		AssessmentCount: count,
	}
	if found {
		completed := latest.CompletedAt
		stats.LastAssessment = &completed
	}
	return stats, nil
}
