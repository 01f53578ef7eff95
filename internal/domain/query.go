package domain

import "time"

// Report periods and their look-back windows in days.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"
)

var periodDays = map[string]int{
	PeriodWeek:  7,
	PeriodMonth: 30,
	PeriodAll:   90,
}

// PeriodDays resolves a report period name to its window.
func PeriodDays(period string) (int, bool) {
	days, ok := periodDays[period]
	return days, ok
}

// Query filters stored items. Zero values disable a filter.
type Query struct {
	Region   string
	Category string
	Status   string
	Keyword  string
	Days     int
	Limit    int
}

// Stats summarizes the stored corpus.
type Stats struct {
	Total      int
	ByRegion   map[string]int
	ByCategory map[string]int
	ByImpact   map[int]int
	LatestDate string
}

// FetchStatus marks the outcome of one source fetch.
type FetchStatus string

const (
	FetchOK     FetchStatus = "ok"
	FetchFailed FetchStatus = "error"
)

// FetchLog records a single source fetch within a run.
type FetchLog struct {
	RunID     string
	Source    string
	ItemCount int
	Status    FetchStatus
	Error     string
	FetchedAt time.Time
}

// RunReport carries per-stage counters of one pipeline execution. Items holds
// every classified item, NewItems only those stored for the first time.
type RunReport struct {
	RunID      string
	Fetched    int
	Unique     int
	Relevant   int
	Recent     int
	Classified int
	Inserted   int
	Items      []LabeledItem
	NewItems   []LabeledItem
}
