package models

const (
	StatusCheckIn  = "CHECKIN"
	StatusCheckOut = "CHECKOUT"
)

// FilterCriteria carries the active filter dimensions. Every field is
// optional; the zero value filters nothing. Dates are calendar days in
// "2006-01-02" form.
type FilterCriteria struct {
	LabID     string
	ClassID   string
	UserID    string
	Status    string
	StartDate string
	EndDate   string
}

func (c *FilterCriteria) IsZero() bool {
	return *c == FilterCriteria{}
}

// StatsSummary is derived from a filtered view, never stored.
type StatsSummary struct {
	Total                  int     `json:"total"`
	ActiveCount            int     `json:"active"`
	AverageDurationMinutes float64 `json:"avgDurationMinutes"`
	MostPopularLabName     string  `json:"popularLab"`
}
