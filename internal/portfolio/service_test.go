package portfolio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"projectshelf-backend/internal/cache"
	"projectshelf-backend/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemory()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(st, cache.NewNoop(), time.Minute, log), st
}

func seedUser(t *testing.T, st *store.MemoryStore, username string) store.User {
	t.Helper()
	user, err := st.CreateUser(context.Background(), store.NewUser{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Name:         username,
		Theme:        "minimal",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func TestCreateDerivesSlug(t *testing.T) {
	svc, st := newTestService(t)
	user := seedUser(t, st, "ada")

	cs, err := svc.Create(context.Background(), user.ID, CaseStudyRequest{
		Title: "My First Project!", Summary: "s",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cs.Slug != "my-first-project" {
		t.Fatalf("slug = %q, want my-first-project", cs.Slug)
	}
	if cs.Status != store.StatusDraft {
		t.Fatalf("status = %q, want draft by default", cs.Status)
	}
}

func TestCreateAutoSuffixesSlugCollisions(t *testing.T) {
	svc, st := newTestService(t)
	user := seedUser(t, st, "ada")

	for i, want := range []string{"launch", "launch-2", "launch-3"} {
		cs, err := svc.Create(context.Background(), user.ID, CaseStudyRequest{
			Title: "Launch", Summary: "s",
		})
		if err != nil {
			t.Fatalf("create #%d: %v", i+1, err)
		}
		if cs.Slug != want {
			t.Fatalf("create #%d: slug = %q, want %q", i+1, cs.Slug, want)
		}
	}

	// A different user is free to reuse the slug.
	other := seedUser(t, st, "grace")
	cs, err := svc.Create(context.Background(), other.ID, CaseStudyRequest{
		Title: "Launch", Summary: "s",
	})
	if err != nil {
		t.Fatalf("create for other user: %v", err)
	}
	if cs.Slug != "launch" {
		t.Fatalf("other user slug = %q, want launch", cs.Slug)
	}
}

func TestCreateRejectsUnsluggableTitle(t *testing.T) {
	svc, st := newTestService(t)
	user := seedUser(t, st, "ada")

	_, err := svc.Create(context.Background(), user.ID, CaseStudyRequest{Title: "!!!", Summary: "s"})
	if !errors.Is(err, ErrBadTitle) {
		t.Fatalf("got %v, want ErrBadTitle", err)
	}
}

func TestUpdateKeepsOwnSlugOnRename(t *testing.T) {
	svc, st := newTestService(t)
	user := seedUser(t, st, "ada")

	cs, err := svc.Create(context.Background(), user.ID, CaseStudyRequest{Title: "Launch", Summary: "s"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Re-submitting the same title must not grow a -2 suffix.
	title := "Launch"
	updated, err := svc.Update(context.Background(), user.ID, cs.ID, CaseStudyPatchRequest{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Slug != "launch" {
		t.Fatalf("slug after no-op rename = %q, want launch", updated.Slug)
	}

	renamed := "Relaunch"
	updated, err = svc.Update(context.Background(), user.ID, cs.ID, CaseStudyPatchRequest{Title: &renamed})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if updated.Slug != "relaunch" {
		t.Fatalf("slug after rename = %q, want relaunch", updated.Slug)
	}
}

func TestOwnershipGate(t *testing.T) {
	svc, st := newTestService(t)
	ada := seedUser(t, st, "ada")
	grace := seedUser(t, st, "grace")

	cs, err := svc.Create(context.Background(), ada.ID, CaseStudyRequest{Title: "Launch", Summary: "s"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "Stolen"
	if _, err := svc.Update(context.Background(), grace.ID, cs.ID, CaseStudyPatchRequest{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign update: got %v, want ErrForbidden", err)
	}
	if err := svc.Delete(context.Background(), grace.ID, cs.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign delete: got %v, want ErrForbidden", err)
	}
	if _, err := svc.AddMetric(context.Background(), grace.ID, cs.ID, MetricRequest{Title: "m", Value: "1"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign child create: got %v, want ErrForbidden", err)
	}
}

func TestPublicPortfolioHidesDrafts(t *testing.T) {
	svc, st := newTestService(t)
	ada := seedUser(t, st, "ada")

	if _, err := svc.Create(context.Background(), ada.ID, CaseStudyRequest{Title: "Draft one", Summary: "s"}); err != nil {
		t.Fatalf("create draft: %v", err)
	}
	published, err := svc.Create(context.Background(), ada.ID, CaseStudyRequest{
		Title: "Public one", Summary: "s", Status: store.StatusPublished,
	})
	if err != nil {
		t.Fatalf("create published: %v", err)
	}

	anon, err := svc.PublicPortfolio(context.Background(), "ada", 0)
	if err != nil {
		t.Fatalf("anonymous portfolio: %v", err)
	}
	if len(anon.CaseStudies) != 1 || anon.CaseStudies[0].ID != published.ID {
		t.Fatalf("anonymous view = %d case studies, want only the published one", len(anon.CaseStudies))
	}
	if anon.User.PasswordHash != "" {
		t.Fatal("password hash leaked into the public view")
	}

	own, err := svc.PublicPortfolio(context.Background(), "ada", ada.ID)
	if err != nil {
		t.Fatalf("owner portfolio: %v", err)
	}
	if len(own.CaseStudies) != 2 {
		t.Fatalf("owner view = %d case studies, want 2", len(own.CaseStudies))
	}
	if own.Theme.ID != "minimal" {
		t.Fatalf("theme = %q, want minimal", own.Theme.ID)
	}
}

func TestPublicPortfolioByNumericID(t *testing.T) {
	svc, st := newTestService(t)
	ada := seedUser(t, st, "ada")

	p, err := svc.PublicPortfolio(context.Background(), "1", 0)
	if err != nil {
		t.Fatalf("portfolio by id: %v", err)
	}
	if p.User.ID != ada.ID {
		t.Fatalf("resolved user %d, want %d", p.User.ID, ada.ID)
	}

	if _, err := svc.PublicPortfolio(context.Background(), "nobody", 0); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unknown identifier: got %v, want ErrNotFound", err)
	}
}

func TestPublicCaseStudyRecordsOneVisit(t *testing.T) {
	svc, st := newTestService(t)
	ada := seedUser(t, st, "ada")

	cs, err := svc.Create(context.Background(), ada.ID, CaseStudyRequest{
		Title: "Launch", Summary: "s", Status: store.StatusPublished,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	detail, err := svc.PublicCaseStudyBySlug(context.Background(), "ada", "launch", "10.0.0.1", "https://news.example.com")
	if err != nil {
		t.Fatalf("public view: %v", err)
	}
	if detail.CaseStudy.ID != cs.ID {
		t.Fatalf("returned case study %d, want %d", detail.CaseStudy.ID, cs.ID)
	}

	visits, err := st.ListVisitsByCaseStudy(context.Background(), cs.ID)
	if err != nil {
		t.Fatalf("list visits: %v", err)
	}
	if len(visits) != 1 {
		t.Fatalf("recorded %d visits, want exactly 1", len(visits))
	}
	if visits[0].Referrer != "https://news.example.com" || visits[0].IPAddress != "10.0.0.1" {
		t.Fatalf("visit fields not captured: %+v", visits[0])
	}
}

func TestPublicCaseStudyHidesDrafts(t *testing.T) {
	svc, st := newTestService(t)
	ada := seedUser(t, st, "ada")

	if _, err := svc.Create(context.Background(), ada.ID, CaseStudyRequest{Title: "Draft", Summary: "s"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.PublicCaseStudyBySlug(context.Background(), "ada", "draft", "", ""); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("draft via public slug: got %v, want ErrNotFound", err)
	}

	visits, err := st.ListVisitsByUser(context.Background(), ada.ID)
	if err != nil {
		t.Fatalf("list visits: %v", err)
	}
	if len(visits) != 0 {
		t.Fatalf("draft view recorded %d visits, want 0", len(visits))
	}
}

func TestDeleteCascadesChildren(t *testing.T) {
	svc, st := newTestService(t)
	ada := seedUser(t, st, "ada")

	cs, err := svc.Create(context.Background(), ada.ID, CaseStudyRequest{Title: "Launch", Summary: "s"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	item, err := svc.AddTimelineItem(context.Background(), ada.ID, cs.ID, TimelineItemRequest{Title: "Kickoff", Order: 1})
	if err != nil {
		t.Fatalf("add timeline item: %v", err)
	}

	if err := svc.Delete(context.Background(), ada.ID, cs.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.GetTimelineItem(context.Background(), item.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("timeline item survived cascade: %v", err)
	}
}
