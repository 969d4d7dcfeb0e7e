package services

import (
	"math"
	"time"

	"labdash/internal/models"
)

const (
	unknownLabName = "Unknown"
	emptyLabName   = "-"
)

type ActivityServiceInterface interface {
	Activities(criteria models.FilterCriteria) []models.ActivityRecord
	Stats(criteria models.FilterCriteria) models.StatsSummary
	Options() models.CatalogSnapshot
	RecordCount() int
}

type ActivityService struct {
	store   *models.ActivityStore
	catalog *models.Catalog
}

func NewActivityService(store *models.ActivityStore, catalog *models.Catalog) ActivityServiceInterface {
	return &ActivityService{
		store:   store,
		catalog: catalog,
	}
}

func (as *ActivityService) Activities(criteria models.FilterCriteria) []models.ActivityRecord {
	return FilterActivities(as.store.Snapshot(), criteria, as.catalog)
}

func (as *ActivityService) Stats(criteria models.FilterCriteria) models.StatsSummary {
	return AggregateActivities(as.Activities(criteria))
}

func (as *ActivityService) Options() models.CatalogSnapshot {
	return as.catalog.Snapshot()
}

func (as *ActivityService) RecordCount() int {
	return as.store.Len()
}

// FilterActivities projects a filtered view of records. Pure: the input
// slice is never mutated and relative order is preserved, so the
// upstream newest-first ordering survives. All dimensions are
// AND-combined.
func FilterActivities(records []models.ActivityRecord, criteria models.FilterCriteria, catalog *models.Catalog) []models.ActivityRecord {
	if criteria.IsZero() {
		return records
	}

	startDay, hasStart := parseFilterDay(criteria.StartDate)
	endDay, hasEnd := parseFilterDay(criteria.EndDate)

	out := make([]models.ActivityRecord, 0, len(records))
	for i := range records {
		if matchesCriteria(&records[i], &criteria, catalog, startDay, hasStart, endDay, hasEnd) {
			out = append(out, records[i])
		}
	}
	return out
}

func matchesCriteria(r *models.ActivityRecord, c *models.FilterCriteria, catalog *models.Catalog, startDay time.Time, hasStart bool, endDay time.Time, hasEnd bool) bool {
	if c.LabID != "" && r.RoomID.String() != c.LabID {
		return false
	}

	// The record carries only a denormalized class name, so the class
	// filter resolves its id to a name through the catalog first. An id
	// the catalog cannot resolve passes everything through: the catalog
	// may still be loading while a stored filter is already active, and
	// wrongly excluding valid records is worse than briefly not
	// narrowing. A record without a class name can never match an
	// active class filter.
	if c.ClassID != "" {
		if r.ClassName == "" {
			return false
		}
		if name, ok := catalog.ClassName(models.FlexID(c.ClassID)); ok && r.ClassName != name {
			return false
		}
	}

	// Same resolution strategy for users, against the username.
	if c.UserID != "" {
		if r.Username == "" {
			return false
		}
		if name, ok := catalog.UserName(models.FlexID(c.UserID)); ok && r.Username != name {
			return false
		}
	}

	switch c.Status {
	case models.StatusCheckIn:
		if r.IsCheckedOut() {
			return false
		}
	case models.StatusCheckOut:
		if !r.IsCheckedOut() {
			return false
		}
	}

	// Date bounds compare calendar days of the check-in, inclusive on
	// both ends. A record whose check-in does not parse is excluded
	// from any date-bounded view rather than treated as an error.
	if hasStart || hasEnd {
		in, ok := r.CheckInTime()
		if !ok {
			return false
		}
		day := truncateToDay(in)
		if hasStart && day.Before(startDay) {
			return false
		}
		if hasEnd && day.After(endDay) {
			return false
		}
	}

	return true
}

// AggregateActivities derives summary statistics in one pass.
func AggregateActivities(records []models.ActivityRecord) models.StatsSummary {
	summary := models.StatsSummary{
		MostPopularLabName: emptyLabName,
	}

	labCounts := make(map[string]int)
	maxCount := 0
	totalMinutes := 0.0
	finished := 0

	for i := range records {
		r := &records[i]
		summary.Total++

		if !r.IsCheckedOut() {
			summary.ActiveCount++
		} else if minutes, ok := r.DurationMinutes(); ok {
			totalMinutes += minutes
			finished++
		}

		// Popularity counts every record, not only finished sessions.
		lab := r.RoomName
		if lab == "" {
			lab = unknownLabName
		}
		labCounts[lab]++
		// Strict greater-than keeps the first lab to reach the maximum
		// on ties. Arbitrary, but deterministic for a stable input order.
		if labCounts[lab] > maxCount {
			maxCount = labCounts[lab]
			summary.MostPopularLabName = lab
		}
	}

	if finished > 0 {
		summary.AverageDurationMinutes = math.Round(totalMinutes/float64(finished)*10) / 10
	}

	return summary
}

func parseFilterDay(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
