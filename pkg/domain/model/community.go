package model

import (
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
)

// DefaultChannelName is used when a community is created without a name
const DefaultChannelName = "Unknown"

// MemberSnapshot is a point-in-time copy of a member's profile taken when the
// member registered a city in a channel. Snapshots are NOT refreshed when the
// profile changes elsewhere; this staleness is an accepted property of the
// design (see the snapshot refresh worker for the opt-in reconciliation).
type MemberSnapshot struct {
	UserID      types.UserID `json:"user_id"`
	DisplayName string       `json:"display_name"`
	City        string       `json:"city"`
}

// Community represents a channel's stored member roster
type Community struct {
	ChannelID   types.ChannelID  `json:"channel_id"`
	ChannelName string           `json:"channel_name"`
	Members     []MemberSnapshot `json:"members"`
	CreatorID   types.UserID     `json:"creator_id"`
}

// HasMember reports whether an identical snapshot is already in the roster.
// Equality is over the full tuple, matching the set-union insert semantics.
func (x *Community) HasMember(snapshot MemberSnapshot) bool {
	for _, m := range x.Members {
		if m == snapshot {
			return true
		}
	}
	return false
}
