package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps everything in maps guarded by one mutex. It backs tests
// and local development; production runs on PostgresStore.
type MemoryStore struct {
	mu sync.Mutex

	users         map[int64]User
	caseStudies   map[int64]CaseStudy
	mediaItems    map[int64]Media
	timelineItems map[int64]TimelineItem
	testimonials  map[int64]Testimonial
	metrics       map[int64]Metric
	visits        map[int64]Visit

	nextID map[string]int64
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		users:         make(map[int64]User),
		caseStudies:   make(map[int64]CaseStudy),
		mediaItems:    make(map[int64]Media),
		timelineItems: make(map[int64]TimelineItem),
		testimonials:  make(map[int64]Testimonial),
		metrics:       make(map[int64]Metric),
		visits:        make(map[int64]Visit),
		nextID:        make(map[string]int64),
	}
}

func (s *MemoryStore) allocID(kind string) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

func (s *MemoryStore) GetUser(ctx context.Context, id int64) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *MemoryStore) CreateUser(ctx context.Context, nu NewUser) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == nu.Username || strings.EqualFold(u.Email, nu.Email) {
			return User{}, ErrConflict
		}
	}
	links := nu.SocialLinks
	if links == nil {
		links = map[string]string{}
	}
	u := User{
		ID:           s.allocID("user"),
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Name:         nu.Name,
		Bio:          nu.Bio,
		ProfileImage: nu.ProfileImage,
		Theme:        nu.Theme,
		SocialLinks:  links,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, id int64, patch UserPatch) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if patch.Username != nil {
		for _, other := range s.users {
			if other.ID != id && other.Username == *patch.Username {
				return User{}, ErrConflict
			}
		}
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		for _, other := range s.users {
			if other.ID != id && strings.EqualFold(other.Email, *patch.Email) {
				return User{}, ErrConflict
			}
		}
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Bio != nil {
		u.Bio = *patch.Bio
	}
	if patch.ProfileImage != nil {
		u.ProfileImage = *patch.ProfileImage
	}
	if patch.Theme != nil {
		u.Theme = *patch.Theme
	}
	if patch.SocialLinks != nil {
		u.SocialLinks = patch.SocialLinks
	}
	s.users[id] = u
	return u, nil
}

func (s *MemoryStore) GetCaseStudy(ctx context.Context, id int64) (CaseStudy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.caseStudies[id]
	if !ok {
		return CaseStudy{}, ErrNotFound
	}
	return cs, nil
}

func (s *MemoryStore) GetCaseStudyBySlug(ctx context.Context, userID int64, slug string) (CaseStudy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cs := range s.caseStudies {
		if cs.UserID == userID && cs.Slug == slug {
			return cs, nil
		}
	}
	return CaseStudy{}, ErrNotFound
}

func (s *MemoryStore) ListCaseStudiesByUser(ctx context.Context, userID int64) ([]CaseStudy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]CaseStudy, 0)
	for _, cs := range s.caseStudies {
		if cs.UserID == userID {
			items = append(items, cs)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *MemoryStore) CreateCaseStudy(ctx context.Context, ncs NewCaseStudy) (CaseStudy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cs := range s.caseStudies {
		if cs.UserID == ncs.UserID && cs.Slug == ncs.Slug {
			return CaseStudy{}, ErrConflict
		}
	}
	now := time.Now().UTC()
	cs := CaseStudy{
		ID:         s.allocID("case_study"),
		UserID:     ncs.UserID,
		Title:      ncs.Title,
		Summary:    ncs.Summary,
		Overview:   ncs.Overview,
		CoverImage: ncs.CoverImage,
		Slug:       ncs.Slug,
		Status:     ncs.Status,
		Tools:      emptyIfNil(ncs.Tools),
		Tags:       emptyIfNil(ncs.Tags),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.caseStudies[cs.ID] = cs
	return cs, nil
}

func (s *MemoryStore) UpdateCaseStudy(ctx context.Context, id int64, patch CaseStudyPatch) (CaseStudy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.caseStudies[id]
	if !ok {
		return CaseStudy{}, ErrNotFound
	}
	if patch.Slug != nil {
		for _, other := range s.caseStudies {
			if other.ID != id && other.UserID == cs.UserID && other.Slug == *patch.Slug {
				return CaseStudy{}, ErrConflict
			}
		}
		cs.Slug = *patch.Slug
	}
	if patch.Title != nil {
		cs.Title = *patch.Title
	}
	if patch.Summary != nil {
		cs.Summary = *patch.Summary
	}
	if patch.Overview != nil {
		cs.Overview = *patch.Overview
	}
	if patch.CoverImage != nil {
		cs.CoverImage = *patch.CoverImage
	}
	if patch.Status != nil {
		cs.Status = *patch.Status
	}
	if patch.Tools != nil {
		cs.Tools = patch.Tools
	}
	if patch.Tags != nil {
		cs.Tags = patch.Tags
	}
	cs.UpdatedAt = time.Now().UTC()
	s.caseStudies[id] = cs
	return cs, nil
}

func (s *MemoryStore) DeleteCaseStudy(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.caseStudies[id]; !ok {
		return ErrNotFound
	}
	delete(s.caseStudies, id)
	for itemID, item := range s.timelineItems {
		if item.CaseStudyID == id {
			delete(s.timelineItems, itemID)
		}
	}
	for itemID, item := range s.testimonials {
		if item.CaseStudyID == id {
			delete(s.testimonials, itemID)
		}
	}
	for itemID, item := range s.metrics {
		if item.CaseStudyID == id {
			delete(s.metrics, itemID)
		}
	}
	for itemID, m := range s.mediaItems {
		if m.CaseStudyID != nil && *m.CaseStudyID == id {
			m.CaseStudyID = nil
			s.mediaItems[itemID] = m
		}
	}
	return nil
}

func (s *MemoryStore) GetMedia(ctx context.Context, id int64) (Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mediaItems[id]
	if !ok {
		return Media{}, ErrNotFound
	}
	return m, nil
}

func (s *MemoryStore) ListMediaByUser(ctx context.Context, userID int64) ([]Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Media, 0)
	for _, m := range s.mediaItems {
		if m.UserID == userID {
			items = append(items, m)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *MemoryStore) ListMediaByCaseStudy(ctx context.Context, caseStudyID int64) ([]Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Media, 0)
	for _, m := range s.mediaItems {
		if m.CaseStudyID != nil && *m.CaseStudyID == caseStudyID {
			items = append(items, m)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *MemoryStore) CreateMedia(ctx context.Context, nm NewMedia) (Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := Media{
		ID:          s.allocID("media"),
		UserID:      nm.UserID,
		CaseStudyID: nm.CaseStudyID,
		URL:         nm.URL,
		Type:        nm.Type,
		Name:        nm.Name,
		CreatedAt:   time.Now().UTC(),
	}
	s.mediaItems[m.ID] = m
	return m, nil
}

func (s *MemoryStore) DeleteMedia(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mediaItems[id]; !ok {
		return ErrNotFound
	}
	delete(s.mediaItems, id)
	return nil
}

func (s *MemoryStore) GetTimelineItem(ctx context.Context, id int64) (TimelineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.timelineItems[id]
	if !ok {
		return TimelineItem{}, ErrNotFound
	}
	return item, nil
}

func (s *MemoryStore) ListTimelineItems(ctx context.Context, caseStudyID int64) ([]TimelineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]TimelineItem, 0)
	for _, item := range s.timelineItems {
		if item.CaseStudyID == caseStudyID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Order != items[j].Order {
			return items[i].Order < items[j].Order
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (s *MemoryStore) CreateTimelineItem(ctx context.Context, ni NewTimelineItem) (TimelineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := TimelineItem{
		ID:          s.allocID("timeline_item"),
		CaseStudyID: ni.CaseStudyID,
		Title:       ni.Title,
		Description: ni.Description,
		Date:        ni.Date,
		Order:       ni.Order,
	}
	s.timelineItems[item.ID] = item
	return item, nil
}

func (s *MemoryStore) UpdateTimelineItem(ctx context.Context, id int64, patch TimelineItemPatch) (TimelineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.timelineItems[id]
	if !ok {
		return TimelineItem{}, ErrNotFound
	}
	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Date != nil {
		item.Date = *patch.Date
	}
	if patch.Order != nil {
		item.Order = *patch.Order
	}
	s.timelineItems[id] = item
	return item, nil
}

func (s *MemoryStore) DeleteTimelineItem(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timelineItems[id]; !ok {
		return ErrNotFound
	}
	delete(s.timelineItems, id)
	return nil
}

func (s *MemoryStore) GetTestimonial(ctx context.Context, id int64) (Testimonial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.testimonials[id]
	if !ok {
		return Testimonial{}, ErrNotFound
	}
	return item, nil
}

func (s *MemoryStore) ListTestimonials(ctx context.Context, caseStudyID int64) ([]Testimonial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Testimonial, 0)
	for _, item := range s.testimonials {
		if item.CaseStudyID == caseStudyID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *MemoryStore) CreateTestimonial(ctx context.Context, ni NewTestimonial) (Testimonial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := Testimonial{
		ID:          s.allocID("testimonial"),
		CaseStudyID: ni.CaseStudyID,
		Text:        ni.Text,
		Author:      ni.Author,
		Position:    ni.Position,
	}
	s.testimonials[item.ID] = item
	return item, nil
}

func (s *MemoryStore) UpdateTestimonial(ctx context.Context, id int64, patch TestimonialPatch) (Testimonial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.testimonials[id]
	if !ok {
		return Testimonial{}, ErrNotFound
	}
	if patch.Text != nil {
		item.Text = *patch.Text
	}
	if patch.Author != nil {
		item.Author = *patch.Author
	}
	if patch.Position != nil {
		item.Position = *patch.Position
	}
	s.testimonials[id] = item
	return item, nil
}

func (s *MemoryStore) DeleteTestimonial(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.testimonials[id]; !ok {
		return ErrNotFound
	}
	delete(s.testimonials, id)
	return nil
}

func (s *MemoryStore) GetMetric(ctx context.Context, id int64) (Metric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.metrics[id]
	if !ok {
		return Metric{}, ErrNotFound
	}
	return item, nil
}

func (s *MemoryStore) ListMetrics(ctx context.Context, caseStudyID int64) ([]Metric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Metric, 0)
	for _, item := range s.metrics {
		if item.CaseStudyID == caseStudyID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *MemoryStore) CreateMetric(ctx context.Context, ni NewMetric) (Metric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := Metric{
		ID:          s.allocID("metric"),
		CaseStudyID: ni.CaseStudyID,
		Title:       ni.Title,
		Value:       ni.Value,
		Subtitle:    ni.Subtitle,
		Icon:        ni.Icon,
	}
	s.metrics[item.ID] = item
	return item, nil
}

func (s *MemoryStore) UpdateMetric(ctx context.Context, id int64, patch MetricPatch) (Metric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.metrics[id]
	if !ok {
		return Metric{}, ErrNotFound
	}
	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Value != nil {
		item.Value = *patch.Value
	}
	if patch.Subtitle != nil {
		item.Subtitle = *patch.Subtitle
	}
	if patch.Icon != nil {
		item.Icon = *patch.Icon
	}
	s.metrics[id] = item
	return item, nil
}

func (s *MemoryStore) DeleteMetric(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.metrics[id]; !ok {
		return ErrNotFound
	}
	delete(s.metrics, id)
	return nil
}

func (s *MemoryStore) ListVisitsByUser(ctx context.Context, userID int64) ([]Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Visit, 0)
	for _, v := range s.visits {
		if v.UserID == userID {
			items = append(items, v)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *MemoryStore) ListVisitsByCaseStudy(ctx context.Context, caseStudyID int64) ([]Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Visit, 0)
	for _, v := range s.visits {
		if v.CaseStudyID != nil && *v.CaseStudyID == caseStudyID {
			items = append(items, v)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *MemoryStore) CreateVisit(ctx context.Context, nv NewVisit) (Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := Visit{
		ID:          s.allocID("visit"),
		UserID:      nv.UserID,
		CaseStudyID: nv.CaseStudyID,
		VisitDate:   time.Now().UTC(),
		IPAddress:   nv.IPAddress,
		Referrer:    nv.Referrer,
	}
	s.visits[v.ID] = v
	return v, nil
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
