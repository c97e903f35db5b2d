package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo_AllowedPaths(t *testing.T) {
	assert.True(t, StatusDraft.CanTransitionTo(StatusPendingReview))
	assert.True(t, StatusPendingReview.CanTransitionTo(StatusPublished))
	assert.True(t, StatusPendingReview.CanTransitionTo(StatusDenied))
	assert.True(t, StatusPublished.CanTransitionTo(StatusArchived))
}

func TestCanTransitionTo_RejectedPaths(t *testing.T) {
	assert.False(t, StatusDraft.CanTransitionTo(StatusPublished))
	assert.False(t, StatusArchived.CanTransitionTo(StatusPublished))
	assert.False(t, StatusDenied.CanTransitionTo(StatusPublished))
	assert.False(t, StatusRecalled.CanTransitionTo(StatusPublished))
}

func TestCanTransitionTo_RecalledUnreachableByUser(t *testing.T) {
	for _, from := range []ListingStatus{StatusDraft, StatusPendingReview, StatusPublished, StatusDenied, StatusArchived} {
		assert.False(t, from.CanTransitionTo(StatusRecalled), "recalled reachable from %s", from)
	}
}

func TestListingClone_DeepCopy(t *testing.T) {
	archived := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	original := &Listing{
		ID:             "l1",
		SearchKeywords: []string{"loft", "berlin"},
		Flags:          []Flag{{ReporterID: "u1", Reason: "spam"}},
		ArchivedAt:     &archived,
	}

	clone := original.Clone()
	require.NotNil(t, clone)

	clone.SearchKeywords[0] = "changed"
	clone.Flags[0].Reason = "changed"
	*clone.ArchivedAt = clone.ArchivedAt.Add(time.Hour)

	assert.Equal(t, "loft", original.SearchKeywords[0])
	assert.Equal(t, "spam", original.Flags[0].Reason)
	assert.Equal(t, archived, *original.ArchivedAt)
}

func TestListingClone_Nil(t *testing.T) {
	var l *Listing
	assert.Nil(t, l.Clone())
}
