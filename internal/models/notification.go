package models

import "time"

type NotificationType string

const (
	NotificationFlagThreshold    NotificationType = "flag_threshold_reached"
	NotificationNewListing       NotificationType = "new_listing_pending"
	NotificationListingSubmitted NotificationType = "listing_submitted"
)

type AdminNotification struct {
	ID               string           `bson:"_id" json:"id"`
	Type             NotificationType `bson:"type" json:"type"`
	Title            string           `bson:"title" json:"title"`
	Message          string           `bson:"message" json:"message"`
	RelatedListingID string           `bson:"relatedListingId" json:"related_listing_id"`
	CreatedAt        time.Time        `bson:"createdAt" json:"created_at"`
	Read             bool             `bson:"read" json:"read"`
}
