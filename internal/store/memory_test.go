package store

import (
	"context"
	"errors"
	"testing"
)

func seedMemoryUser(t *testing.T, s *MemoryStore, username string) User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), NewUser{
		Username: username, Email: username + "@example.com", PasswordHash: "x", Name: username, Theme: "minimal",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func seedMemoryCaseStudy(t *testing.T, s *MemoryStore, userID int64, slug string) CaseStudy {
	t.Helper()
	cs, err := s.CreateCaseStudy(context.Background(), NewCaseStudy{
		UserID: userID, Title: slug, Summary: "s", Slug: slug, Status: StatusDraft,
	})
	if err != nil {
		t.Fatalf("seed case study %s: %v", slug, err)
	}
	return cs
}

func TestMemoryUserUniqueness(t *testing.T) {
	s := NewMemory()
	seedMemoryUser(t, s, "ada")

	_, err := s.CreateUser(context.Background(), NewUser{
		Username: "ada", Email: "other@example.com", PasswordHash: "x",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate username: got %v, want ErrConflict", err)
	}

	// Email uniqueness is case-insensitive.
	_, err = s.CreateUser(context.Background(), NewUser{
		Username: "grace", Email: "ADA@EXAMPLE.COM", PasswordHash: "x",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate email: got %v, want ErrConflict", err)
	}
}

func TestMemorySlugUniquePerUser(t *testing.T) {
	s := NewMemory()
	ada := seedMemoryUser(t, s, "ada")
	grace := seedMemoryUser(t, s, "grace")
	seedMemoryCaseStudy(t, s, ada.ID, "launch")

	_, err := s.CreateCaseStudy(context.Background(), NewCaseStudy{
		UserID: ada.ID, Title: "t", Summary: "s", Slug: "launch", Status: StatusDraft,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("same-user duplicate slug: got %v, want ErrConflict", err)
	}

	if _, err := s.CreateCaseStudy(context.Background(), NewCaseStudy{
		UserID: grace.ID, Title: "t", Summary: "s", Slug: "launch", Status: StatusDraft,
	}); err != nil {
		t.Fatalf("cross-user duplicate slug: %v", err)
	}
}

func TestMemoryPartialUpdateMergesFields(t *testing.T) {
	s := NewMemory()
	ada := seedMemoryUser(t, s, "ada")
	cs := seedMemoryCaseStudy(t, s, ada.ID, "launch")

	title := "New title"
	updated, err := s.UpdateCaseStudy(context.Background(), cs.ID, CaseStudyPatch{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "New title" {
		t.Fatalf("title = %q, want New title", updated.Title)
	}
	if updated.Summary != cs.Summary || updated.Slug != cs.Slug || updated.Status != cs.Status {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
	if !updated.UpdatedAt.After(cs.UpdatedAt) && !updated.UpdatedAt.Equal(cs.UpdatedAt) {
		t.Fatalf("UpdatedAt went backwards: %v -> %v", cs.UpdatedAt, updated.UpdatedAt)
	}
}

func TestMemoryTimelineSortedByOrder(t *testing.T) {
	s := NewMemory()
	ada := seedMemoryUser(t, s, "ada")
	cs := seedMemoryCaseStudy(t, s, ada.ID, "launch")

	for _, order := range []int{3, 1, 2} {
		if _, err := s.CreateTimelineItem(context.Background(), NewTimelineItem{
			CaseStudyID: cs.ID, Title: "step", Order: order,
		}); err != nil {
			t.Fatalf("create item order %d: %v", order, err)
		}
	}

	items, err := s.ListTimelineItems(context.Background(), cs.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	for i, want := range []int{1, 2, 3} {
		if items[i].Order != want {
			t.Fatalf("items[%d].Order = %d, want %d", i, items[i].Order, want)
		}
	}
}

func TestMemoryDeleteCaseStudyCascades(t *testing.T) {
	s := NewMemory()
	ada := seedMemoryUser(t, s, "ada")
	cs := seedMemoryCaseStudy(t, s, ada.ID, "launch")
	keep := seedMemoryCaseStudy(t, s, ada.ID, "other")

	item, err := s.CreateTimelineItem(context.Background(), NewTimelineItem{CaseStudyID: cs.ID, Title: "t"})
	if err != nil {
		t.Fatalf("create timeline item: %v", err)
	}
	quote, err := s.CreateTestimonial(context.Background(), NewTestimonial{CaseStudyID: cs.ID, Text: "great", Author: "g"})
	if err != nil {
		t.Fatalf("create testimonial: %v", err)
	}
	metric, err := s.CreateMetric(context.Background(), NewMetric{CaseStudyID: cs.ID, Title: "m", Value: "1"})
	if err != nil {
		t.Fatalf("create metric: %v", err)
	}
	attached, err := s.CreateMedia(context.Background(), NewMedia{UserID: ada.ID, CaseStudyID: &cs.ID, URL: "u", Type: MediaTypeImage, Name: "n"})
	if err != nil {
		t.Fatalf("create media: %v", err)
	}
	keepItem, err := s.CreateTimelineItem(context.Background(), NewTimelineItem{CaseStudyID: keep.ID, Title: "t"})
	if err != nil {
		t.Fatalf("create keep item: %v", err)
	}

	if err := s.DeleteCaseStudy(context.Background(), cs.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.GetTimelineItem(context.Background(), item.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("timeline item survived: %v", err)
	}
	if _, err := s.GetTestimonial(context.Background(), quote.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("testimonial survived: %v", err)
	}
	if _, err := s.GetMetric(context.Background(), metric.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("metric survived: %v", err)
	}

	// Media is detached, not deleted.
	m, err := s.GetMedia(context.Background(), attached.ID)
	if err != nil {
		t.Fatalf("media deleted instead of detached: %v", err)
	}
	if m.CaseStudyID != nil {
		t.Fatalf("media still attached to %d", *m.CaseStudyID)
	}

	// The sibling case study keeps its children.
	if _, err := s.GetTimelineItem(context.Background(), keepItem.ID); err != nil {
		t.Fatalf("sibling child lost: %v", err)
	}
}

func TestMemoryGetUserByEmailIsCaseInsensitive(t *testing.T) {
	s := NewMemory()
	ada := seedMemoryUser(t, s, "ada")

	u, err := s.GetUserByEmail(context.Background(), "ADA@example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if u.ID != ada.ID {
		t.Fatalf("got user %d, want %d", u.ID, ada.ID)
	}
}
