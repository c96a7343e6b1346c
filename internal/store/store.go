package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict signals a unique constraint violation (username, email,
	// or the per-user slug).
	ErrConflict = errors.New("record conflicts with an existing one")
)

// Store is the persistence contract shared by the in-memory store (dev/test)
// and the Postgres store (production). Ownership checks are the caller's
// responsibility; deletes here are unconditional.
type Store interface {
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	CreateUser(ctx context.Context, u NewUser) (User, error)
	UpdateUser(ctx context.Context, id int64, patch UserPatch) (User, error)

	GetCaseStudy(ctx context.Context, id int64) (CaseStudy, error)
	GetCaseStudyBySlug(ctx context.Context, userID int64, slug string) (CaseStudy, error)
	ListCaseStudiesByUser(ctx context.Context, userID int64) ([]CaseStudy, error)
	CreateCaseStudy(ctx context.Context, cs NewCaseStudy) (CaseStudy, error)
	UpdateCaseStudy(ctx context.Context, id int64, patch CaseStudyPatch) (CaseStudy, error)
	// DeleteCaseStudy cascades: timeline items, testimonials and metrics go
	// with the case study, attached media is detached.
	DeleteCaseStudy(ctx context.Context, id int64) error

	GetMedia(ctx context.Context, id int64) (Media, error)
	ListMediaByUser(ctx context.Context, userID int64) ([]Media, error)
	ListMediaByCaseStudy(ctx context.Context, caseStudyID int64) ([]Media, error)
	CreateMedia(ctx context.Context, m NewMedia) (Media, error)
	DeleteMedia(ctx context.Context, id int64) error

	GetTimelineItem(ctx context.Context, id int64) (TimelineItem, error)
	// ListTimelineItems returns items sorted by Order ascending.
	ListTimelineItems(ctx context.Context, caseStudyID int64) ([]TimelineItem, error)
	CreateTimelineItem(ctx context.Context, item NewTimelineItem) (TimelineItem, error)
	UpdateTimelineItem(ctx context.Context, id int64, patch TimelineItemPatch) (TimelineItem, error)
	DeleteTimelineItem(ctx context.Context, id int64) error

	GetTestimonial(ctx context.Context, id int64) (Testimonial, error)
	ListTestimonials(ctx context.Context, caseStudyID int64) ([]Testimonial, error)
	CreateTestimonial(ctx context.Context, item NewTestimonial) (Testimonial, error)
	UpdateTestimonial(ctx context.Context, id int64, patch TestimonialPatch) (Testimonial, error)
	DeleteTestimonial(ctx context.Context, id int64) error

	GetMetric(ctx context.Context, id int64) (Metric, error)
	ListMetrics(ctx context.Context, caseStudyID int64) ([]Metric, error)
	CreateMetric(ctx context.Context, item NewMetric) (Metric, error)
	UpdateMetric(ctx context.Context, id int64, patch MetricPatch) (Metric, error)
	DeleteMetric(ctx context.Context, id int64) error

	ListVisitsByUser(ctx context.Context, userID int64) ([]Visit, error)
	ListVisitsByCaseStudy(ctx context.Context, caseStudyID int64) ([]Visit, error)
	CreateVisit(ctx context.Context, v NewVisit) (Visit, error)
}
