package analytics

import (
	"testing"
	"time"

	"projectshelf-backend/internal/store"
)

func visitAt(t time.Time, caseStudyID *int64, referrer string) store.Visit {
	return store.Visit{UserID: 1, CaseStudyID: caseStudyID, VisitDate: t, Referrer: referrer}
}

func ptr(v int64) *int64 { return &v }

func TestSummarizeDayBucketsSortedAscending(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	d1 := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	visits := []store.Visit{
		visitAt(d2, nil, ""),
		visitAt(d1, nil, ""),
		visitAt(d2, nil, ""),
		visitAt(d1, nil, ""),
		visitAt(d1, nil, ""),
	}

	sum := Summarize(visits, nil, now)
	if len(sum.VisitsChartData) != 2 {
		t.Fatalf("expected 2 day buckets, got %d", len(sum.VisitsChartData))
	}
	if sum.VisitsChartData[0].Date != "2026-08-10" || sum.VisitsChartData[0].Visits != 3 {
		t.Fatalf("unexpected first bucket: %+v", sum.VisitsChartData[0])
	}
	if sum.VisitsChartData[1].Date != "2026-08-20" || sum.VisitsChartData[1].Visits != 2 {
		t.Fatalf("unexpected second bucket: %+v", sum.VisitsChartData[1])
	}
}

func TestSummarizeCutoffSplitsTotalAndRecent(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	old := now.Add(-31 * 24 * time.Hour)
	fresh := now.Add(-2 * 24 * time.Hour)

	sum := Summarize([]store.Visit{
		visitAt(old, nil, ""),
		visitAt(old, nil, ""),
		visitAt(fresh, nil, ""),
	}, nil, now)

	if sum.TotalVisits != 3 {
		t.Fatalf("expected 3 total visits, got %d", sum.TotalVisits)
	}
	if sum.RecentVisits != 1 {
		t.Fatalf("expected 1 recent visit, got %d", sum.RecentVisits)
	}
	if len(sum.VisitsChartData) != 1 {
		t.Fatalf("old visits must not appear in chart data: %+v", sum.VisitsChartData)
	}
}

func TestSummarizeCaseStudyChartSortedByCountDescending(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	fresh := now.Add(-24 * time.Hour)

	caseStudies := []store.CaseStudy{
		{ID: 1, Title: "Alpha"},
		{ID: 2, Title: "Beta"},
	}
	visits := []store.Visit{
		visitAt(fresh, ptr(1), ""),
		visitAt(fresh, ptr(2), ""),
		visitAt(fresh, ptr(2), ""),
		visitAt(fresh, nil, ""), // no case study, skipped from this grouping
	}

	sum := Summarize(visits, caseStudies, now)
	if len(sum.CaseStudyChartData) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(sum.CaseStudyChartData))
	}
	if sum.CaseStudyChartData[0].ID != 2 || sum.CaseStudyChartData[0].Title != "Beta" || sum.CaseStudyChartData[0].Visits != 2 {
		t.Fatalf("unexpected top entry: %+v", sum.CaseStudyChartData[0])
	}
	if sum.CaseStudyChartData[1].ID != 1 {
		t.Fatalf("unexpected second entry: %+v", sum.CaseStudyChartData[1])
	}
}

func TestSummarizeReferrerGrouping(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	fresh := now.Add(-24 * time.Hour)

	visits := []store.Visit{
		visitAt(fresh, nil, "https://twitter.com/some/path"),
		visitAt(fresh, nil, "twitter.com"),
		visitAt(fresh, nil, "http://news.ycombinator.com"),
		visitAt(fresh, nil, ""),        // empty: dropped
		visitAt(fresh, nil, "http://"), // no hostname: dropped
	}

	sum := Summarize(visits, nil, now)
	if len(sum.ReferrerChartData) != 2 {
		t.Fatalf("expected 2 referrer entries, got %+v", sum.ReferrerChartData)
	}
	if sum.ReferrerChartData[0].Referrer != "twitter.com" || sum.ReferrerChartData[0].Visits != 2 {
		t.Fatalf("unexpected top referrer: %+v", sum.ReferrerChartData[0])
	}
	if sum.ReferrerChartData[1].Referrer != "news.ycombinator.com" {
		t.Fatalf("unexpected second referrer: %+v", sum.ReferrerChartData[1])
	}
	// dropped referrers still count toward the visit totals
	if sum.RecentVisits != 5 {
		t.Fatalf("expected 5 recent visits, got %d", sum.RecentVisits)
	}
}

func TestSummarizeUnknownCaseStudyGetsPlaceholderTitle(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	visits := []store.Visit{visitAt(now.Add(-time.Hour), ptr(99), "")}

	sum := Summarize(visits, nil, now)
	if len(sum.CaseStudyChartData) != 1 || sum.CaseStudyChartData[0].Title != "Untitled" {
		t.Fatalf("unexpected chart data: %+v", sum.CaseStudyChartData)
	}
}

func TestSummarizeCaseStudy(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	cs := store.CaseStudy{ID: 7, Title: "Gamma"}
	visits := []store.Visit{
		visitAt(now.Add(-time.Hour), ptr(7), "https://example.com"),
		visitAt(now.Add(-40*24*time.Hour), ptr(7), ""),
	}

	sum := SummarizeCaseStudy(visits, cs, now)
	if sum.CaseStudy.ID != 7 {
		t.Fatalf("case study not echoed back: %+v", sum.CaseStudy)
	}
	if sum.TotalVisits != 2 || sum.RecentVisits != 1 {
		t.Fatalf("unexpected totals: %+v", sum)
	}
	if len(sum.ReferrerChartData) != 1 || sum.ReferrerChartData[0].Referrer != "example.com" {
		t.Fatalf("unexpected referrers: %+v", sum.ReferrerChartData)
	}
}
