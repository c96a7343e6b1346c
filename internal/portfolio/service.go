package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"projectshelf-backend/internal/cache"
	"projectshelf-backend/internal/store"
	"projectshelf-backend/internal/themes"
	"projectshelf-backend/internal/utils"
)

var (
	ErrNotFound  = store.ErrNotFound
	ErrForbidden = errors.New("case study belongs to another user")
	// ErrBadTitle means the title has no characters usable in a slug.
	ErrBadTitle = errors.New("title yields an empty slug")
)

const slugProbeLimit = 50

type Service struct {
	store    store.Store
	cache    cache.Cache
	cacheTTL time.Duration
	log      *slog.Logger
}

func NewService(s store.Store, c cache.Cache, cacheTTL time.Duration, log *slog.Logger) *Service {
	if c == nil {
		c = cache.NewNoop()
	}
	return &Service{store: s, cache: c, cacheTTL: cacheTTL, log: log}
}

func (s *Service) ListOwn(ctx context.Context, userID int64) ([]store.CaseStudy, error) {
	return s.store.ListCaseStudiesByUser(ctx, userID)
}

func (s *Service) Create(ctx context.Context, userID int64, req CaseStudyRequest) (store.CaseStudy, error) {
	status := req.Status
	if status == "" {
		status = store.StatusDraft
	}

	base := req.Slug
	if base == "" {
		base = utils.Slugify(req.Title)
	}
	if base == "" {
		return store.CaseStudy{}, ErrBadTitle
	}
	slug, err := s.uniqueSlug(ctx, userID, base, 0)
	if err != nil {
		return store.CaseStudy{}, err
	}

	cs, err := s.store.CreateCaseStudy(ctx, store.NewCaseStudy{
		UserID:     userID,
		Title:      req.Title,
		Summary:    req.Summary,
		Overview:   req.Overview,
		CoverImage: req.CoverImage,
		Slug:       slug,
		Status:     status,
		Tools:      req.Tools,
		Tags:       req.Tags,
	})
	if err != nil {
		return store.CaseStudy{}, err
	}
	s.invalidatePortfolio(ctx, userID)
	return cs, nil
}

func (s *Service) Update(ctx context.Context, userID, id int64, req CaseStudyPatchRequest) (store.CaseStudy, error) {
	current, err := s.requireOwnedCaseStudy(ctx, userID, id)
	if err != nil {
		return store.CaseStudy{}, err
	}

	patch := store.CaseStudyPatch{
		Title:      req.Title,
		Summary:    req.Summary,
		Overview:   req.Overview,
		CoverImage: req.CoverImage,
		Status:     req.Status,
		Tools:      req.Tools,
		Tags:       req.Tags,
	}

	// An explicit slug wins; otherwise a new title re-derives the slug so
	// the public URL follows the rename.
	var base string
	switch {
	case req.Slug != nil:
		base = *req.Slug
	case req.Title != nil:
		base = utils.Slugify(*req.Title)
	}
	if base != "" && base != current.Slug {
		slug, err := s.uniqueSlug(ctx, userID, base, id)
		if err != nil {
			return store.CaseStudy{}, err
		}
		patch.Slug = &slug
	}

	updated, err := s.store.UpdateCaseStudy(ctx, id, patch)
	if err != nil {
		return store.CaseStudy{}, err
	}
	s.invalidatePortfolio(ctx, userID)
	return updated, nil
}

// Delete removes the case study; the store cascades timeline items,
// testimonials and metrics, and detaches media.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.requireOwnedCaseStudy(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteCaseStudy(ctx, id); err != nil {
		return err
	}
	s.invalidatePortfolio(ctx, userID)
	return nil
}

// PublicPortfolio resolves a numeric id or a username. Non-owners only see
// published case studies; the anonymous view is served from cache.
func (s *Service) PublicPortfolio(ctx context.Context, identifier string, viewerID int64) (Portfolio, error) {
	var (
		user store.User
		err  error
	)
	if id, convErr := strconv.ParseInt(identifier, 10, 64); convErr == nil && id > 0 {
		user, err = s.store.GetUser(ctx, id)
	} else {
		user, err = s.store.GetUserByUsername(ctx, identifier)
	}
	if err != nil {
		return Portfolio{}, err
	}
	user.PasswordHash = ""

	owner := viewerID == user.ID
	key := s.portfolioKey(user.ID)
	if !owner {
		if raw, ok, cacheErr := s.cache.Get(ctx, key); cacheErr == nil && ok {
			var p Portfolio
			if json.Unmarshal(raw, &p) == nil {
				return p, nil
			}
		}
	}

	studies, err := s.store.ListCaseStudiesByUser(ctx, user.ID)
	if err != nil {
		return Portfolio{}, err
	}
	if !owner {
		published := studies[:0]
		for _, cs := range studies {
			if cs.Status == store.StatusPublished {
				published = append(published, cs)
			}
		}
		studies = published
	}
	if studies == nil {
		studies = []store.CaseStudy{}
	}

	p := Portfolio{User: user, Theme: themes.Resolve(user.Theme), CaseStudies: studies}
	if !owner {
		if raw, marshalErr := json.Marshal(p); marshalErr == nil {
			if cacheErr := s.cache.Set(ctx, key, raw, s.cacheTTL); cacheErr != nil {
				s.log.Warn("portfolio cache: set failed", slog.String("error", cacheErr.Error()))
			}
		}
	}
	return p, nil
}

// CaseStudyByID returns the full bundle. Drafts are only visible to their
// owner; everyone else gets a not-found.
func (s *Service) CaseStudyByID(ctx context.Context, id, viewerID int64) (CaseStudyDetail, error) {
	cs, err := s.store.GetCaseStudy(ctx, id)
	if err != nil {
		return CaseStudyDetail{}, err
	}
	if cs.Status != store.StatusPublished && cs.UserID != viewerID {
		return CaseStudyDetail{}, ErrNotFound
	}
	return s.loadDetail(ctx, cs)
}

// PublicCaseStudyBySlug serves a published case study and records exactly
// one visit for the page view.
func (s *Service) PublicCaseStudyBySlug(ctx context.Context, username, slug, ip, referrer string) (CaseStudyDetail, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return CaseStudyDetail{}, err
	}
	cs, err := s.store.GetCaseStudyBySlug(ctx, user.ID, slug)
	if err != nil {
		return CaseStudyDetail{}, err
	}
	if cs.Status != store.StatusPublished {
		return CaseStudyDetail{}, ErrNotFound
	}

	detail, err := s.loadDetail(ctx, cs)
	if err != nil {
		return CaseStudyDetail{}, err
	}

	csID := cs.ID
	if _, err := s.store.CreateVisit(ctx, store.NewVisit{
		UserID:      user.ID,
		CaseStudyID: &csID,
		IPAddress:   ip,
		Referrer:    referrer,
	}); err != nil {
		// The page still renders when the visit row fails to write.
		s.log.Warn("public case study: visit not recorded", slog.Int64("case_study_id", cs.ID), slog.String("error", err.Error()))
	}
	return detail, nil
}

func (s *Service) AddTimelineItem(ctx context.Context, userID, caseStudyID int64, req TimelineItemRequest) (store.TimelineItem, error) {
	if _, err := s.requireOwnedCaseStudy(ctx, userID, caseStudyID); err != nil {
		return store.TimelineItem{}, err
	}
	return s.store.CreateTimelineItem(ctx, store.NewTimelineItem{
		CaseStudyID: caseStudyID,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Order:       req.Order,
	})
}

func (s *Service) UpdateTimelineItem(ctx context.Context, userID, id int64, req TimelineItemPatchRequest) (store.TimelineItem, error) {
	item, err := s.store.GetTimelineItem(ctx, id)
	if err != nil {
		return store.TimelineItem{}, err
	}
	if _, err := s.requireOwnedCaseStudy(ctx, userID, item.CaseStudyID); err != nil {
		return store.TimelineItem{}, err
	}
	return s.store.UpdateTimelineItem(ctx, id, store.TimelineItemPatch{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Order:       req.Order,
	})
}

func (s *Service) DeleteTimelineItem(ctx context.Context, userID, id int64) error {
	item, err := s.store.GetTimelineItem(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.requireOwnedCaseStudy(ctx, userID, item.CaseStudyID); err != nil {
		return err
	}
	return s.store.DeleteTimelineItem(ctx, id)
}

func (s *Service) AddTestimonial(ctx context.Context, userID, caseStudyID int64, req TestimonialRequest) (store.Testimonial, error) {
	if _, err := s.requireOwnedCaseStudy(ctx, userID, caseStudyID); err != nil {
		return store.Testimonial{}, err
	}
	return s.store.CreateTestimonial(ctx, store.NewTestimonial{
		CaseStudyID: caseStudyID,
		Text:        req.Text,
		Author:      req.Author,
		Position:    req.Position,
	})
}

func (s *Service) UpdateTestimonial(ctx context.Context, userID, id int64, req TestimonialPatchRequest) (store.Testimonial, error) {
	item, err := s.store.GetTestimonial(ctx, id)
	if err != nil {
		return store.Testimonial{}, err
	}
	if _, err := s.requireOwnedCaseStudy(ctx, userID, item.CaseStudyID); err != nil {
		return store.Testimonial{}, err
	}
	return s.store.UpdateTestimonial(ctx, id, store.TestimonialPatch{
		Text:     req.Text,
		Author:   req.Author,
		Position: req.Position,
	})
}

func (s *Service) DeleteTestimonial(ctx context.Context, userID, id int64) error {
	item, err := s.store.GetTestimonial(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.requireOwnedCaseStudy(ctx, userID, item.CaseStudyID); err != nil {
		return err
	}
	return s.store.DeleteTestimonial(ctx, id)
}

func (s *Service) AddMetric(ctx context.Context, userID, caseStudyID int64, req MetricRequest) (store.Metric, error) {
	if _, err := s.requireOwnedCaseStudy(ctx, userID, caseStudyID); err != nil {
		return store.Metric{}, err
	}
	return s.store.CreateMetric(ctx, store.NewMetric{
		CaseStudyID: caseStudyID,
		Title:       req.Title,
		Value:       req.Value,
		Subtitle:    req.Subtitle,
		Icon:        req.Icon,
	})
}

func (s *Service) UpdateMetric(ctx context.Context, userID, id int64, req MetricPatchRequest) (store.Metric, error) {
	item, err := s.store.GetMetric(ctx, id)
	if err != nil {
		return store.Metric{}, err
	}
	if _, err := s.requireOwnedCaseStudy(ctx, userID, item.CaseStudyID); err != nil {
		return store.Metric{}, err
	}
	return s.store.UpdateMetric(ctx, id, store.MetricPatch{
		Title:    req.Title,
		Value:    req.Value,
		Subtitle: req.Subtitle,
		Icon:     req.Icon,
	})
}

func (s *Service) DeleteMetric(ctx context.Context, userID, id int64) error {
	item, err := s.store.GetMetric(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.requireOwnedCaseStudy(ctx, userID, item.CaseStudyID); err != nil {
		return err
	}
	return s.store.DeleteMetric(ctx, id)
}

func (s *Service) requireOwnedCaseStudy(ctx context.Context, userID, id int64) (store.CaseStudy, error) {
	cs, err := s.store.GetCaseStudy(ctx, id)
	if err != nil {
		return store.CaseStudy{}, err
	}
	if cs.UserID != userID {
		return store.CaseStudy{}, ErrForbidden
	}
	return cs, nil
}

func (s *Service) loadDetail(ctx context.Context, cs store.CaseStudy) (CaseStudyDetail, error) {
	timeline, err := s.store.ListTimelineItems(ctx, cs.ID)
	if err != nil {
		return CaseStudyDetail{}, err
	}
	testimonials, err := s.store.ListTestimonials(ctx, cs.ID)
	if err != nil {
		return CaseStudyDetail{}, err
	}
	metrics, err := s.store.ListMetrics(ctx, cs.ID)
	if err != nil {
		return CaseStudyDetail{}, err
	}
	media, err := s.store.ListMediaByCaseStudy(ctx, cs.ID)
	if err != nil {
		return CaseStudyDetail{}, err
	}
	return CaseStudyDetail{
		CaseStudy:    cs,
		Timeline:     timeline,
		Testimonials: testimonials,
		Metrics:      metrics,
		Media:        media,
	}, nil
}

// uniqueSlug probes base, base-2, base-3... until a free slug is found for
// the user. excludeID lets an update keep its own slug.
func (s *Service) uniqueSlug(ctx context.Context, userID int64, base string, excludeID int64) (string, error) {
	base = utils.Slugify(base)
	if base == "" {
		return "", ErrBadTitle
	}
	candidate := base
	for i := 2; i <= slugProbeLimit; i++ {
		existing, err := s.store.GetCaseStudyBySlug(ctx, userID, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		if existing.ID == excludeID {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", base, slugProbeLimit)
}

func (s *Service) portfolioKey(userID int64) string {
	return "portfolio:public:" + strconv.FormatInt(userID, 10)
}

func (s *Service) invalidatePortfolio(ctx context.Context, userID int64) {
	if err := s.cache.Delete(ctx, s.portfolioKey(userID)); err != nil {
		s.log.Warn("portfolio cache: delete failed", slog.String("error", err.Error()))
	}
}
