package interfaces

import (
	"context"

	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
)

// ProfileRepository provides database operations for user profiles.
// All writes are merge-upserts: fields absent from the patch survive.
type ProfileRepository interface {
	// Get retrieves a profile by user ID. Returns model.ErrNotFound if absent.
	Get(ctx context.Context, id types.UserID) (*model.Profile, error)

	// Upsert creates or merges a profile. Nil patch fields are left untouched.
	Upsert(ctx context.Context, id types.UserID, patch *model.ProfilePatch) error

	// DeleteCity removes the city field from a profile. The rest of the
	// document survives. Missing profile is not an error.
	DeleteCity(ctx context.Context, id types.UserID) error

	// BulkClear deletes all profiles (admin operation)
	BulkClear(ctx context.Context) error
}

// CommunityRepository provides database operations for channel rosters
type CommunityRepository interface {
	// Get retrieves a community by channel ID. Returns model.ErrNotFound if absent.
	Get(ctx context.Context, id types.ChannelID) (*model.Community, error)

	// Create stores a community if no document exists for the channel yet.
	// An existing community is left untouched.
	Create(ctx context.Context, community *model.Community) error

	// AddMemberSnapshot appends a member snapshot with set-union semantics:
	// adding a byte-identical {id, displayName, city} tuple twice yields one
	// entry. Creates the community document if it does not exist.
	AddMemberSnapshot(ctx context.Context, id types.ChannelID, snapshot model.MemberSnapshot) error

	// ListAll retrieves every community (used by the snapshot refresh worker)
	ListAll(ctx context.Context) ([]*model.Community, error)

	// ReplaceMembers overwrites a community's member roster
	ReplaceMembers(ctx context.Context, id types.ChannelID, members []model.MemberSnapshot) error

	// ClearAllMembers empties the member roster of every community
	ClearAllMembers(ctx context.Context) error
}
