package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yourtyme-app/yourtyme/pkg/domain/interfaces"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
)

// ProfileUseCase handles user profile operations
type ProfileUseCase struct {
	repo interfaces.Repository
}

func NewProfileUseCase(repo interfaces.Repository) *ProfileUseCase {
	return &ProfileUseCase{repo: repo}
}

// Authorize verifies the caller identity exists in the profile store.
// There is no cryptographic session; existence is the auth check.
func (uc *ProfileUseCase) Authorize(ctx context.Context, id types.UserID) error {
	if err := id.Validate(); err != nil {
		return goerr.Wrap(model.ErrUnauthorized, "missing caller identity")
	}

	if _, err := uc.repo.Profile().Get(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return goerr.Wrap(model.ErrUnauthorized, "unknown caller identity", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to verify caller identity", goerr.V("id", id))
	}

	return nil
}

// Get retrieves a profile
func (uc *ProfileUseCase) Get(ctx context.Context, id types.UserID) (*model.Profile, error) {
	profile, err := uc.repo.Profile().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateDisplayName sets a profile's display name
func (uc *ProfileUseCase) UpdateDisplayName(ctx context.Context, id types.UserID, name string) (*model.Profile, error) {
	if name == "" {
		return nil, goerr.New("display name cannot be empty", goerr.V("id", id))
	}

	patch := &model.ProfilePatch{DisplayName: model.String(name)}
	if err := uc.repo.Profile().Upsert(ctx, id, patch); err != nil {
		return nil, goerr.Wrap(err, "failed to update display name", goerr.V("id", id))
	}

	return uc.repo.Profile().Get(ctx, id)
}

// SetCity records the user's city. When channelID is given, a member snapshot
// is also unioned into that channel's community roster (a point-in-time copy;
// later city changes do not rewrite it).
func (uc *ProfileUseCase) SetCity(ctx context.Context, id types.UserID, city string, channelID types.ChannelID) (*model.Profile, error) {
	if city == "" {
		return nil, goerr.New("city cannot be empty", goerr.V("id", id))
	}

	patch := &model.ProfilePatch{City: model.String(city)}
	if err := uc.repo.Profile().Upsert(ctx, id, patch); err != nil {
		return nil, goerr.Wrap(err, "failed to set city", goerr.V("id", id))
	}

	profile, err := uc.repo.Profile().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load profile after city update", goerr.V("id", id))
	}

	if channelID != "" {
		displayName := profile.DisplayName
		if displayName == "" {
			displayName = id.String()
		}
		snapshot := model.MemberSnapshot{
			UserID:      id,
			DisplayName: displayName,
			City:        city,
		}
		if err := uc.repo.Community().AddMemberSnapshot(ctx, channelID, snapshot); err != nil {
			return nil, goerr.Wrap(err, "failed to add member snapshot",
				goerr.V("id", id), goerr.V("channel_id", channelID))
		}
	}

	return profile, nil
}

// GetCity returns the user's city, empty string when not set
func (uc *ProfileUseCase) GetCity(ctx context.Context, id types.UserID) (string, error) {
	profile, err := uc.repo.Profile().Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return profile.City, nil
}

// DeleteCity removes the user's city
func (uc *ProfileUseCase) DeleteCity(ctx context.Context, id types.UserID) (*model.Profile, error) {
	if err := uc.repo.Profile().DeleteCity(ctx, id); err != nil {
		return nil, goerr.Wrap(err, "failed to delete city", goerr.V("id", id))
	}

	profile, err := uc.repo.Profile().Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}
