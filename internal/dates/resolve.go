// Package dates resolves the heterogeneous publication date formats returned
// by academic source APIs into usable timestamps.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/helioscope/slr-analytics-service/internal/domain"
)

// yearPattern matches a plausible publication year embedded in a date string.
var yearPattern = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)

// Resolution is the outcome of resolving a publication's date fields.
type Resolution struct {
	// Date is the resolved timestamp. Zero when Resolved is false.
	Date time.Time
	// Resolved reports whether any date field yielded a usable timestamp.
	Resolved bool
	// Field is the publication field the date came from.
	Field string
	// Reason explains why resolution failed. Empty when Resolved is true.
	Reason string
}

// Resolve extracts the best available timestamp from a publication's date
// fields. Fields are tried in priority order: publication_date,
// published_date, date, then the numeric year. String fields go through
// increasingly permissive parsers; a bare year resolves to January 1st of
// that year.
func Resolve(pub *domain.Publication) Resolution {
	fields := []struct {
		name  string
		value string
	}{
		{"publication_date", pub.PublicationDate},
		{"published_date", pub.PublishedDate},
		{"date", pub.Date},
	}

	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if t, ok := parseDateString(f.value); ok {
			return Resolution{Date: t, Resolved: true, Field: f.name}
		}
	}

	if pub.Year > 0 {
		if t, ok := yearToTime(pub.Year); ok {
			return Resolution{Date: t, Resolved: true, Field: "year"}
		}
		return Resolution{Resolved: false, Reason: fmt.Sprintf("implausible year %d", pub.Year)}
	}

	return Resolution{Resolved: false, Reason: "no date fields present"}
}

// ResolveAll resolves dates for a slice of publications, attaching resolved
// timestamps in place. Publications that already carry a resolved timestamp
// are kept as-is. It returns the publications that resolved and the count of
// those that did not.
func ResolveAll(pubs []*domain.Publication) (resolved []*domain.Publication, failed int) {
	resolved = make([]*domain.Publication, 0, len(pubs))
	for _, pub := range pubs {
		if _, ok := pub.ResolvedTime(); ok {
			resolved = append(resolved, pub)
			continue
		}
		res := Resolve(pub)
		if !res.Resolved {
			failed++
			continue
		}
		pub.SetResolvedTime(res.Date)
		resolved = append(resolved, pub)
	}
	return resolved, failed
}

// parseDateString tries progressively more permissive parsers on a raw date
// string.
func parseDateString(raw string) (time.Time, bool) {
	// Bare year, e.g. "2021".
	if len(raw) == 4 {
		if year, err := strconv.Atoi(raw); err == nil {
			return yearToTime(year)
		}
	}

	// Common ISO forms first: cheap and unambiguous.
	for _, layout := range []string{"2006-01-02", "2006-01", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}

	if t, err := dateparse.ParseAny(raw); err == nil {
		return t.UTC(), true
	}

	// Last resort: any plausible 4-digit year embedded in the string.
	if m := yearPattern.FindString(raw); m != "" {
		year, _ := strconv.Atoi(m)
		return yearToTime(year)
	}

	return time.Time{}, false
}

// yearToTime converts a plausible publication year to January 1st UTC.
func yearToTime(year int) (time.Time, bool) {
	if year < 1800 || year > time.Now().Year()+1 {
		return time.Time{}, false
	}
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
}
