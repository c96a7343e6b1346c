package store

import "time"

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

type User struct {
	ID           int64             `json:"id"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"-"`
	Name         string            `json:"name"`
	Bio          string            `json:"bio,omitempty"`
	ProfileImage string            `json:"profileImage,omitempty"`
	Theme        string            `json:"theme"`
	SocialLinks  map[string]string `json:"socialLinks"`
	CreatedAt    time.Time         `json:"createdAt"`
}

type CaseStudy struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	Overview   string    `json:"overview,omitempty"`
	CoverImage string    `json:"coverImage,omitempty"`
	Slug       string    `json:"slug"`
	Status     string    `json:"status"`
	Tools      []string  `json:"tools"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Media struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	CaseStudyID *int64    `json:"caseStudyId,omitempty"`
	URL         string    `json:"url"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TimelineItem struct {
	ID          int64  `json:"id"`
	CaseStudyID int64  `json:"caseStudyId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Order       int    `json:"order"`
}

type Testimonial struct {
	ID          int64  `json:"id"`
	CaseStudyID int64  `json:"caseStudyId"`
	Text        string `json:"text"`
	Author      string `json:"author"`
	Position    string `json:"position,omitempty"`
}

type Metric struct {
	ID          int64  `json:"id"`
	CaseStudyID int64  `json:"caseStudyId"`
	Title       string `json:"title"`
	Value       string `json:"value"`
	Subtitle    string `json:"subtitle,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// Visit rows are append-only; they are never updated or deleted.
type Visit struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	CaseStudyID *int64    `json:"caseStudyId,omitempty"`
	VisitDate   time.Time `json:"visitDate"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
}

type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	Name         string
	Bio          string
	ProfileImage string
	Theme        string
	SocialLinks  map[string]string
}

type UserPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Name         *string
	Bio          *string
	ProfileImage *string
	Theme        *string
	SocialLinks  map[string]string
}

type NewCaseStudy struct {
	UserID     int64
	Title      string
	Summary    string
	Overview   string
	CoverImage string
	Slug       string
	Status     string
	Tools      []string
	Tags       []string
}

type CaseStudyPatch struct {
	Title      *string
	Summary    *string
	Overview   *string
	CoverImage *string
	Slug       *string
	Status     *string
	Tools      []string
	Tags       []string
}

type NewMedia struct {
	UserID      int64
	CaseStudyID *int64
	URL         string
	Type        string
	Name        string
}

type NewTimelineItem struct {
	CaseStudyID int64
	Title       string
	Description string
	Date        string
	Order       int
}

type TimelineItemPatch struct {
	Title       *string
	Description *string
	Date        *string
	Order       *int
}

type NewTestimonial struct {
	CaseStudyID int64
	Text        string
	Author      string
	Position    string
}

type TestimonialPatch struct {
	Text     *string
	Author   *string
	Position *string
}

type NewMetric struct {
	CaseStudyID int64
	Title       string
	Value       string
	Subtitle    string
	Icon        string
}

type MetricPatch struct {
	Title    *string
	Value    *string
	Subtitle *string
	Icon     *string
}

type NewVisit struct {
	UserID      int64
	CaseStudyID *int64
	IPAddress   string
	Referrer    string
}
