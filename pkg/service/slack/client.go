package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
)

// DefaultPageSize bounds channel and member enumeration calls
const DefaultPageSize = 100

// client implements Service interface
type client struct {
	api      *slack.Client
	pageSize int
}

// Option is a functional option for client configuration
type Option func(*client)

// WithPageSize sets the page size for enumeration calls
func WithPageSize(size int) Option {
	return func(c *client) {
		c.pageSize = size
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		api:      slack.New(token),
		pageSize: DefaultPageSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ListChannels retrieves the public channels the bot is a member of
func (c *client) ListChannels(ctx context.Context) ([]Channel, error) {
	var channels []Channel
	var cursor string

	for {
		params := &slack.GetConversationsParameters{
			Types:           []string{"public_channel"},
			ExcludeArchived: true,
			Limit:           c.pageSize,
			Cursor:          cursor,
		}

		convs, nextCursor, err := c.api.GetConversationsContext(ctx, params)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get conversations")
		}

		for _, conv := range convs {
			// Only include channels the bot is a member of
			if conv.IsMember {
				channels = append(channels, Channel{
					ID:   types.ChannelID(conv.ID),
					Name: conv.Name,
				})
			}
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	return channels, nil
}

// ListMembers retrieves the user IDs of a channel's members
func (c *client) ListMembers(ctx context.Context, channelID types.ChannelID) ([]types.UserID, error) {
	var members []types.UserID
	var cursor string

	for {
		params := &slack.GetUsersInConversationParameters{
			ChannelID: channelID.String(),
			Limit:     c.pageSize,
			Cursor:    cursor,
		}

		ids, nextCursor, err := c.api.GetUsersInConversationContext(ctx, params)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get channel members", goerr.V("channel_id", channelID))
		}

		for _, id := range ids {
			members = append(members, types.UserID(id))
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	return members, nil
}

// GetUserInfo retrieves user information for the given user ID
func (c *client) GetUserInfo(ctx context.Context, userID types.UserID) (*User, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID.String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user info", goerr.V("user_id", userID))
	}

	displayName := user.RealName
	if displayName == "" {
		displayName = user.Name
	}

	return &User{
		ID:          types.UserID(user.ID),
		Name:        user.Name,
		DisplayName: displayName,
		IsBot:       user.IsBot,
		Deleted:     user.Deleted,
	}, nil
}

// PublishHomeView renders the App Home tab for a user
func (c *client) PublishHomeView(ctx context.Context, userID types.UserID, blocks []slack.Block) error {
	view := slack.HomeTabViewRequest{
		Type:   slack.VTHomeTab,
		Blocks: slack.Blocks{BlockSet: blocks},
	}

	req := slack.PublishViewContextRequest{
		UserID: userID.String(),
		View:   view,
	}
	if _, err := c.api.PublishViewContext(ctx, req); err != nil {
		return goerr.Wrap(err, "failed to publish home view", goerr.V("user_id", userID))
	}
	return nil
}

// OpenModal opens a modal view in response to an interaction trigger
func (c *client) OpenModal(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	if _, err := c.api.OpenViewContext(ctx, triggerID, view); err != nil {
		return goerr.Wrap(err, "failed to open modal view")
	}
	return nil
}

// PostMessage sends a plain text message
func (c *client) PostMessage(ctx context.Context, channelID string, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return goerr.Wrap(err, "failed to post message", goerr.V("channel_id", channelID))
	}
	return nil
}
