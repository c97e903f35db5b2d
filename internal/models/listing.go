package models

import "time"

type ListingStatus string

const (
	StatusDraft         ListingStatus = "draft"
	StatusPendingReview ListingStatus = "pending_review"
	StatusPublished     ListingStatus = "published"
	StatusDenied        ListingStatus = "denied"
	StatusArchived      ListingStatus = "archived"
	StatusRecalled      ListingStatus = "recalled"
)

// userTransitions holds the transitions a user may request. The recalled
// state is reachable only through the moderation workflow.
var userTransitions = map[ListingStatus][]ListingStatus{
	StatusDraft:         {StatusPendingReview},
	StatusPendingReview: {StatusPublished, StatusDenied},
	StatusPublished:     {StatusArchived},
}

func (s ListingStatus) CanTransitionTo(next ListingStatus) bool {
	for _, allowed := range userTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Flag struct {
	ReporterID string    `bson:"reporterId" json:"reporter_id"`
	Reason     string    `bson:"reason" json:"reason"`
	CreatedAt  time.Time `bson:"createdAt" json:"created_at"`
}

type Listing struct {
	ID             string        `bson:"_id" json:"id"`
	LandlordID     string        `bson:"landlordId" json:"landlord_id"`
	Title          string        `bson:"title" json:"title"`
	Description    string        `bson:"description" json:"description"`
	City           string        `bson:"city" json:"city"`
	Address        string        `bson:"address" json:"address"`
	PricePerMonth  float64       `bson:"pricePerMonth" json:"price_per_month"`
	Slug           string        `bson:"slug" json:"slug"`
	SearchKeywords []string      `bson:"searchKeywords" json:"search_keywords"`
	Status         ListingStatus `bson:"status" json:"status"`
	FlagCount      int           `bson:"flagCount" json:"flag_count"`
	FlagThreshold  int           `bson:"flagThreshold" json:"flag_threshold"`
	Flags          []Flag        `bson:"flags" json:"flags"`
	CreatedAt      time.Time     `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time     `bson:"updatedAt" json:"updated_at"`
	ArchivedAt     *time.Time    `bson:"archivedAt,omitempty" json:"archived_at,omitempty"`
}

// Clone returns a deep copy, used to capture pre-write state for change events.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	c := *l
	c.SearchKeywords = append([]string(nil), l.SearchKeywords...)
	c.Flags = append([]Flag(nil), l.Flags...)
	if l.ArchivedAt != nil {
		t := *l.ArchivedAt
		c.ArchivedAt = &t
	}
	return &c
}
