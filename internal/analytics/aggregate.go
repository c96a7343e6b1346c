// Package analytics turns raw visit rows into the dashboard summaries.
// All date math is UTC: the 30-day cutoff and the per-day buckets both use
// UTC calendar days, so chart buckets don't shift with the server timezone.
package analytics

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"projectshelf-backend/internal/store"
)

const recentWindow = 30 * 24 * time.Hour

type DayVisits struct {
	Date   string `json:"date"`
	Visits int    `json:"visits"`
}

type CaseStudyVisits struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Visits int    `json:"visits"`
}

type ReferrerVisits struct {
	Referrer string `json:"referrer"`
	Visits   int    `json:"visits"`
}

type Summary struct {
	TotalVisits        int               `json:"totalVisits"`
	RecentVisits       int               `json:"recentVisits"`
	VisitsChartData    []DayVisits       `json:"visitsChartData"`
	CaseStudyChartData []CaseStudyVisits `json:"caseStudyChartData"`
	ReferrerChartData  []ReferrerVisits  `json:"referrerChartData"`
}

type CaseStudySummary struct {
	CaseStudy         store.CaseStudy  `json:"caseStudy"`
	TotalVisits       int              `json:"totalVisits"`
	RecentVisits      int              `json:"recentVisits"`
	VisitsChartData   []DayVisits      `json:"visitsChartData"`
	ReferrerChartData []ReferrerVisits `json:"referrerChartData"`
}

// Summarize aggregates a user's visits over the trailing 30 days.
// caseStudies supplies titles for the per-case-study chart.
func Summarize(visits []store.Visit, caseStudies []store.CaseStudy, now time.Time) Summary {
	recent := recentVisits(visits, now)

	byCaseStudy := make(map[int64]int)
	for _, v := range recent {
		if v.CaseStudyID != nil {
			byCaseStudy[*v.CaseStudyID]++
		}
	}
	titles := make(map[int64]string, len(caseStudies))
	for _, cs := range caseStudies {
		titles[cs.ID] = cs.Title
	}
	caseStudyChart := make([]CaseStudyVisits, 0, len(byCaseStudy))
	for id, count := range byCaseStudy {
		title, ok := titles[id]
		if !ok {
			title = "Untitled"
		}
		caseStudyChart = append(caseStudyChart, CaseStudyVisits{ID: id, Title: title, Visits: count})
	}
	sort.Slice(caseStudyChart, func(i, j int) bool {
		if caseStudyChart[i].Visits != caseStudyChart[j].Visits {
			return caseStudyChart[i].Visits > caseStudyChart[j].Visits
		}
		return caseStudyChart[i].ID < caseStudyChart[j].ID
	})

	return Summary{
		TotalVisits:        len(visits),
		RecentVisits:       len(recent),
		VisitsChartData:    visitsByDay(recent),
		CaseStudyChartData: caseStudyChart,
		ReferrerChartData:  visitsByReferrer(recent),
	}
}

// SummarizeCaseStudy aggregates one case study's visits.
func SummarizeCaseStudy(visits []store.Visit, cs store.CaseStudy, now time.Time) CaseStudySummary {
	recent := recentVisits(visits, now)
	return CaseStudySummary{
		CaseStudy:         cs,
		TotalVisits:       len(visits),
		RecentVisits:      len(recent),
		VisitsChartData:   visitsByDay(recent),
		ReferrerChartData: visitsByReferrer(recent),
	}
}

func recentVisits(visits []store.Visit, now time.Time) []store.Visit {
	cutoff := now.UTC().Add(-recentWindow)
	recent := make([]store.Visit, 0, len(visits))
	for _, v := range visits {
		if !v.VisitDate.Before(cutoff) {
			recent = append(recent, v)
		}
	}
	return recent
}

func visitsByDay(visits []store.Visit) []DayVisits {
	byDay := make(map[string]int)
	for _, v := range visits {
		byDay[v.VisitDate.UTC().Format("2006-01-02")]++
	}
	chart := make([]DayVisits, 0, len(byDay))
	for date, count := range byDay {
		chart = append(chart, DayVisits{Date: date, Visits: count})
	}
	sort.Slice(chart, func(i, j int) bool { return chart[i].Date < chart[j].Date })
	return chart
}

func visitsByReferrer(visits []store.Visit) []ReferrerVisits {
	byReferrer := make(map[string]int)
	for _, v := range visits {
		host, ok := referrerHost(v.Referrer)
		if !ok {
			// empty or unparseable referrers are dropped from this grouping only
			continue
		}
		byReferrer[host]++
	}
	chart := make([]ReferrerVisits, 0, len(byReferrer))
	for referrer, count := range byReferrer {
		chart = append(chart, ReferrerVisits{Referrer: referrer, Visits: count})
	}
	sort.Slice(chart, func(i, j int) bool {
		if chart[i].Visits != chart[j].Visits {
			return chart[i].Visits > chart[j].Visits
		}
		return chart[i].Referrer < chart[j].Referrer
	})
	return chart
}

func referrerHost(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	return u.Hostname(), true
}
