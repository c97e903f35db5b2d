package models

import "time"

type MetricType string

const (
	MetricView     MetricType = "view"
	MetricBookmark MetricType = "bookmark"
	MetricFlag     MetricType = "flag"
)

func (m MetricType) Valid() bool {
	switch m {
	case MetricView, MetricBookmark, MetricFlag:
		return true
	}
	return false
}

// Field returns the counter field name used in persisted documents.
func (m MetricType) Field() string {
	switch m {
	case MetricView:
		return "viewCount"
	case MetricBookmark:
		return "bookmarkCount"
	case MetricFlag:
		return "flagCount"
	}
	return ""
}

// ListingAnalytics is the per-listing lifetime counter document.
type ListingAnalytics struct {
	ListingID     string    `bson:"_id" json:"listing_id"`
	ViewCount     int       `bson:"viewCount" json:"view_count"`
	BookmarkCount int       `bson:"bookmarkCount" json:"bookmark_count"`
	FlagCount     int       `bson:"flagCount" json:"flag_count"`
	LastUpdated   time.Time `bson:"lastUpdated" json:"last_updated"`
}

// RollupBucket is one pre-aggregated counter document scoped to a UTC hour
// or a UTC day. The document id is "<listingId>:<bucketKey>".
type RollupBucket struct {
	ID            string    `bson:"_id" json:"-"`
	ListingID     string    `bson:"listingId" json:"listing_id"`
	BucketKey     string    `bson:"bucket" json:"bucket"`
	ViewCount     int       `bson:"viewCount" json:"view_count"`
	BookmarkCount int       `bson:"bookmarkCount" json:"bookmark_count"`
	FlagCount     int       `bson:"flagCount" json:"flag_count"`
	LastUpdated   time.Time `bson:"lastUpdated" json:"last_updated"`
}

// MetricTotals is an aggregate over a set of buckets.
type MetricTotals struct {
	Views     int `json:"views"`
	Bookmarks int `json:"bookmarks"`
	Flags     int `json:"flags"`
}

func (t *MetricTotals) Add(b *RollupBucket) {
	t.Views += b.ViewCount
	t.Bookmarks += b.BookmarkCount
	t.Flags += b.FlagCount
}

// WindowComparison holds current-vs-previous period totals for one listing.
type WindowComparison struct {
	Current  MetricTotals `json:"current"`
	Previous MetricTotals `json:"previous"`
}

// GrowthPercent reports the relative change between periods. A previous
// total of zero with current activity reads as +100% by policy.
func GrowthPercent(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

func (w WindowComparison) ViewGrowth() float64 {
	return GrowthPercent(w.Current.Views, w.Previous.Views)
}

func (w WindowComparison) BookmarkGrowth() float64 {
	return GrowthPercent(w.Current.Bookmarks, w.Previous.Bookmarks)
}

// DayKey returns the UTC calendar-day bucket key, e.g. "2026-08-30".
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// HourKey returns the UTC hour bucket key, e.g. "2026-08-30-07".
func HourKey(t time.Time) string {
	return t.UTC().Format("2006-01-02-15")
}

// Last24hKeys returns the 24 discrete hour keys of the trailing window,
// including the current (partial) hour.
func Last24hKeys(now time.Time) []string {
	keys := make([]string, 0, 24)
	for i := 0; i < 24; i++ {
		keys = append(keys, HourKey(now.Add(-time.Duration(i)*time.Hour)))
	}
	return keys
}

// WindowDayKeys returns the day keys of the period spanning days calendar
// days and ending offsetPeriods*days days before today. offsetPeriods 0 is
// the current period, 1 the previous one.
func WindowDayKeys(now time.Time, days, offsetPeriods int) []string {
	keys := make([]string, 0, days)
	end := now.UTC().AddDate(0, 0, -offsetPeriods*days)
	for i := 0; i < days; i++ {
		keys = append(keys, DayKey(end.AddDate(0, 0, -i)))
	}
	return keys
}
