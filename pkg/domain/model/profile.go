package model

import (
	"log/slog"
	"time"

	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
)

// Profile represents a workspace member stored in the database.
// City is the member's self-reported home city; empty string means "not set".
type Profile struct {
	ID          types.UserID
	DisplayName string
	City        string
	AuthToken   string // User OAuth access token, present only after OAuth
	TeamID      string
	UpdatedAt   time.Time
}

// LogValue masks the auth token in structured logs
func (x Profile) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", x.ID.String()),
		slog.String("display_name", x.DisplayName),
		slog.String("city", x.City),
		slog.Int("auth_token.len", len(x.AuthToken)),
		slog.String("team_id", x.TeamID),
	)
}

// HasCity returns true if the profile has a real city value
func (x *Profile) HasCity() bool {
	return x != nil && x.City != ""
}

// ProfilePatch expresses a partial profile update. Nil fields are left
// untouched by Upsert (merge semantics, never a full overwrite).
type ProfilePatch struct {
	DisplayName *string
	City        *string
	AuthToken   *string
	TeamID      *string
}

// String returns a pointer to s, a convenience for building patches
func String(s string) *string {
	return &s
}
