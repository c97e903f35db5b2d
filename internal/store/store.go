package store

import "errors"

// Collection names are part of the persisted contract.
const (
	CollListings           = "listings"
	CollAnalytics          = "analytics"
	CollAnalyticsDaily     = "analytics_daily"
	CollAnalyticsHourly    = "analytics_hourly"
	CollAdminNotifications = "adminNotifications"
	CollMessages           = "messages"
)

// ErrNotFound reports that a document addressed by id does not exist.
var ErrNotFound = errors.New("document not found")
