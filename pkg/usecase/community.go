package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yourtyme-app/yourtyme/pkg/domain/interfaces"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
)

// CommunityUseCase handles channel roster operations
type CommunityUseCase struct {
	repo interfaces.Repository
}

func NewCommunityUseCase(repo interfaces.Repository) *CommunityUseCase {
	return &CommunityUseCase{repo: repo}
}

// GetOrCreate returns the community for a channel, creating an empty one with
// the caller as creator if none exists yet.
func (uc *CommunityUseCase) GetOrCreate(ctx context.Context, channelID types.ChannelID, channelName string, creatorID types.UserID) (*model.Community, error) {
	if err := channelID.Validate(); err != nil {
		return nil, err
	}

	community, err := uc.repo.Community().Get(ctx, channelID)
	if err == nil {
		return community, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to get community", goerr.V("channel_id", channelID))
	}

	if channelName == "" {
		channelName = model.DefaultChannelName
	}
	community = &model.Community{
		ChannelID:   channelID,
		ChannelName: channelName,
		Members:     []model.MemberSnapshot{},
		CreatorID:   creatorID,
	}
	if err := uc.repo.Community().Create(ctx, community); err != nil {
		return nil, goerr.Wrap(err, "failed to create community", goerr.V("channel_id", channelID))
	}

	// Re-read: a concurrent creator may have won the race
	return uc.repo.Community().Get(ctx, channelID)
}

// GetMembers returns the member snapshots of a channel.
// Returns model.ErrNotFound if the community does not exist.
func (uc *CommunityUseCase) GetMembers(ctx context.Context, channelID types.ChannelID) ([]model.MemberSnapshot, error) {
	community, err := uc.repo.Community().Get(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return community.Members, nil
}

// ClearAllMembers wipes every community's member roster (admin operation)
func (uc *CommunityUseCase) ClearAllMembers(ctx context.Context) error {
	if err := uc.repo.Community().ClearAllMembers(ctx); err != nil {
		return goerr.Wrap(err, "failed to clear community members")
	}
	return nil
}
