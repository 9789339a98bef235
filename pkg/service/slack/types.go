package slack

import (
	"context"

	"github.com/slack-go/slack"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
)

// Service provides the interface to the Slack API consumed by the use cases.
// Implementations must be safe for concurrent use; the home sync job fans out
// member lookups.
type Service interface {
	// ListChannels retrieves the public channels the bot is a member of.
	// Pagination is handled internally with pages of at most 100 channels.
	ListChannels(ctx context.Context) ([]Channel, error)

	// ListMembers retrieves the user IDs of a channel's members
	ListMembers(ctx context.Context, channelID types.ChannelID) ([]types.UserID, error)

	// GetUserInfo retrieves user information for the given user ID
	GetUserInfo(ctx context.Context, userID types.UserID) (*User, error)

	// PublishHomeView renders the App Home tab for a user
	PublishHomeView(ctx context.Context, userID types.UserID, blocks []slack.Block) error

	// OpenModal opens a modal view in response to an interaction trigger
	OpenModal(ctx context.Context, triggerID string, view slack.ModalViewRequest) error

	// PostMessage sends a plain text direct message to a user or channel
	PostMessage(ctx context.Context, channelID string, text string) error
}

// Channel represents a Slack channel
type Channel struct {
	ID   types.ChannelID
	Name string
}

// User represents a Slack user
type User struct {
	ID          types.UserID
	Name        string
	DisplayName string
	IsBot       bool
	Deleted     bool
}
