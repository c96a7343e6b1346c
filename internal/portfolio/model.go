package portfolio

import (
	"projectshelf-backend/internal/store"
	"projectshelf-backend/internal/themes"
)

type CaseStudyRequest struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Summary    string   `json:"summary" validate:"required,max=2000"`
	Overview   string   `json:"overview" validate:"max=20000"`
	CoverImage string   `json:"coverImage" validate:"omitempty,url"`
	Slug       string   `json:"slug" validate:"omitempty,slug"`
	Status     string   `json:"status" validate:"omitempty,oneof=draft published"`
	Tools      []string `json:"tools"`
	Tags       []string `json:"tags"`
}

// CaseStudyPatchRequest uses pointers so absent fields stay untouched.
type CaseStudyPatchRequest struct {
	Title      *string  `json:"title" validate:"omitempty,max=200"`
	Summary    *string  `json:"summary" validate:"omitempty,max=2000"`
	Overview   *string  `json:"overview" validate:"omitempty,max=20000"`
	CoverImage *string  `json:"coverImage" validate:"omitempty,url"`
	Slug       *string  `json:"slug" validate:"omitempty,slug"`
	Status     *string  `json:"status" validate:"omitempty,oneof=draft published"`
	Tools      []string `json:"tools"`
	Tags       []string `json:"tags"`
}

type TimelineItemRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Date        string `json:"date" validate:"omitempty,date"`
	Order       int    `json:"order" validate:"gte=0"`
}

type TimelineItemPatchRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Date        *string `json:"date" validate:"omitempty,date"`
	Order       *int    `json:"order" validate:"omitempty,gte=0"`
}

type TestimonialRequest struct {
	Text     string `json:"text" validate:"required,max=2000"`
	Author   string `json:"author" validate:"required,max=100"`
	Position string `json:"position" validate:"max=100"`
}

type TestimonialPatchRequest struct {
	Text     *string `json:"text" validate:"omitempty,max=2000"`
	Author   *string `json:"author" validate:"omitempty,max=100"`
	Position *string `json:"position" validate:"omitempty,max=100"`
}

type MetricRequest struct {
	Title    string `json:"title" validate:"required,max=100"`
	Value    string `json:"value" validate:"required,max=100"`
	Subtitle string `json:"subtitle" validate:"max=100"`
	Icon     string `json:"icon" validate:"max=100"`
}

type MetricPatchRequest struct {
	Title    *string `json:"title" validate:"omitempty,max=100"`
	Value    *string `json:"value" validate:"omitempty,max=100"`
	Subtitle *string `json:"subtitle" validate:"omitempty,max=100"`
	Icon     *string `json:"icon" validate:"omitempty,max=100"`
}

// Portfolio is the public view of a user and their case studies.
type Portfolio struct {
	User        store.User        `json:"user"`
	Theme       themes.Theme      `json:"theme"`
	CaseStudies []store.CaseStudy `json:"caseStudies"`
}

// CaseStudyDetail bundles a case study with all of its children.
type CaseStudyDetail struct {
	CaseStudy    store.CaseStudy      `json:"caseStudy"`
	Timeline     []store.TimelineItem `json:"timeline"`
	Testimonials []store.Testimonial  `json:"testimonials"`
	Metrics      []store.Metric       `json:"metrics"`
	Media        []store.Media        `json:"media"`
}
