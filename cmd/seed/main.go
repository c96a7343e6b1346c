package main

import (
	"context"
	"errors"
	"log"
	"time"

	"projectshelf-backend/internal/auth"
	"projectshelf-backend/internal/config"
	"projectshelf-backend/internal/store"
)

// Seeds a demo account with a published case study so a fresh environment
// has something to look at. Safe to run twice; the demo user is skipped
// when it already exists.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for seeding")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal(err)
	}
	st, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	if _, err := st.GetUserByUsername(ctx, "demo"); err == nil {
		log.Println("demo user already exists, nothing to do")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Fatal(err)
	}

	hash, err := auth.HashPassword("demo1234")
	if err != nil {
		log.Fatal(err)
	}

	user, err := st.CreateUser(ctx, store.NewUser{
		Username:     "demo",
		Email:        "demo@example.com",
		PasswordHash: hash,
		Name:         "Demo Maker",
		Bio:          "Product designer sharing selected client work.",
		Theme:        "minimal",
		SocialLinks: map[string]string{
			"twitter": "https://twitter.com/demomaker",
			"github":  "https://github.com/demomaker",
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	cs, err := st.CreateCaseStudy(ctx, store.NewCaseStudy{
		UserID:  user.ID,
		Title:   "Checkout Redesign",
		Summary: "Rebuilt the checkout flow for a mid-size retailer.",
		Overview: "A three month engagement covering research, prototyping and a " +
			"phased rollout of a new checkout experience.",
		Slug:   "checkout-redesign",
		Status: store.StatusPublished,
		Tools:  []string{"Figma", "React", "Go"},
		Tags:   []string{"ecommerce", "ux"},
	})
	if err != nil {
		log.Fatal(err)
	}

	timeline := []store.NewTimelineItem{
		{CaseStudyID: cs.ID, Title: "Research", Description: "Interviews and funnel analysis.", Date: "2026-01-12", Order: 1},
		{CaseStudyID: cs.ID, Title: "Prototype", Description: "Interactive prototype and usability rounds.", Date: "2026-02-02", Order: 2},
		{CaseStudyID: cs.ID, Title: "Rollout", Description: "Phased launch behind a feature flag.", Date: "2026-03-16", Order: 3},
	}
	for _, item := range timeline {
		if _, err := st.CreateTimelineItem(ctx, item); err != nil {
			log.Fatal(err)
		}
	}

	if _, err := st.CreateTestimonial(ctx, store.NewTestimonial{
		CaseStudyID: cs.ID,
		Text:        "Conversion went up within the first week of rollout.",
		Author:      "Jordan Reyes",
		Position:    "Head of Product",
	}); err != nil {
		log.Fatal(err)
	}

	metrics := []store.NewMetric{
		{CaseStudyID: cs.ID, Title: "Conversion lift", Value: "+18%", Subtitle: "30 days after launch"},
		{CaseStudyID: cs.ID, Title: "Support tickets", Value: "-40%", Subtitle: "checkout related"},
	}
	for _, m := range metrics {
		if _, err := st.CreateMetric(ctx, m); err != nil {
			log.Fatal(err)
		}
	}

	referrers := []string{"https://twitter.com/some/post", "https://news.ycombinator.com/item?id=1", ""}
	for _, ref := range referrers {
		if _, err := st.CreateVisit(ctx, store.NewVisit{
			UserID:      user.ID,
			CaseStudyID: &cs.ID,
			IPAddress:   "203.0.113.10",
			Referrer:    ref,
		}); err != nil {
			log.Fatal(err)
		}
	}

	log.Printf("seeded demo user %d with case study %q", user.ID, cs.Slug)
}
