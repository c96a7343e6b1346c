package analytics

import (
	"context"
	"errors"
	"time"

	"projectshelf-backend/internal/store"
)

var (
	ErrNotFound  = errors.New("case study not found")
	ErrForbidden = errors.New("case study belongs to another user")
	ErrNoUser    = errors.New("user not found")
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) UserSummary(ctx context.Context, userID int64) (Summary, error) {
	visits, err := s.store.ListVisitsByUser(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	caseStudies, err := s.store.ListCaseStudiesByUser(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(visits, caseStudies, time.Now()), nil
}

func (s *Service) CaseStudySummary(ctx context.Context, caseStudyID, userID int64) (CaseStudySummary, error) {
	cs, err := s.store.GetCaseStudy(ctx, caseStudyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return CaseStudySummary{}, ErrNotFound
		}
		return CaseStudySummary{}, err
	}
	if cs.UserID != userID {
		return CaseStudySummary{}, ErrForbidden
	}
	visits, err := s.store.ListVisitsByCaseStudy(ctx, caseStudyID)
	if err != nil {
		return CaseStudySummary{}, err
	}
	return SummarizeCaseStudy(visits, cs, time.Now()), nil
}

// RecordHit appends one visit row for the named user's portfolio.
func (s *Service) RecordHit(ctx context.Context, username string, caseStudyID *int64, ip, referrer string) error {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoUser
		}
		return err
	}
	_, err = s.store.CreateVisit(ctx, store.NewVisit{
		UserID:      user.ID,
		CaseStudyID: caseStudyID,
		IPAddress:   ip,
		Referrer:    referrer,
	})
	return err
}
