package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yourtyme-app/yourtyme/pkg/domain/interfaces"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
)

type profileRepository struct {
	mu       sync.RWMutex
	profiles map[types.UserID]*model.Profile
}

var _ interfaces.ProfileRepository = &profileRepository{}

func newProfileRepository() *profileRepository {
	return &profileRepository{
		profiles: make(map[types.UserID]*model.Profile),
	}
}

// Get retrieves a profile by user ID
func (r *profileRepository) Get(ctx context.Context, id types.UserID) (*model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "profile not found", goerr.V("id", id))
	}

	// Return a copy to prevent external modifications
	profileCopy := *profile
	return &profileCopy, nil
}

// Upsert creates or merges a profile. Nil patch fields are left untouched,
// mirroring the merge-set semantics of the Firestore backend.
func (r *profileRepository) Upsert(ctx context.Context, id types.UserID, patch *model.ProfilePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[id]
	if !ok {
		profile = &model.Profile{ID: id}
		r.profiles[id] = profile
	}

	if patch.DisplayName != nil {
		profile.DisplayName = *patch.DisplayName
	}
	if patch.City != nil {
		profile.City = *patch.City
	}
	if patch.AuthToken != nil {
		profile.AuthToken = *patch.AuthToken
	}
	if patch.TeamID != nil {
		profile.TeamID = *patch.TeamID
	}
	profile.UpdatedAt = time.Now()

	return nil
}

// DeleteCity removes the city field of a profile. Missing profile is not an error.
func (r *profileRepository) DeleteCity(ctx context.Context, id types.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if profile, ok := r.profiles[id]; ok {
		profile.City = ""
		profile.UpdatedAt = time.Now()
	}

	return nil
}

// BulkClear deletes all profiles
func (r *profileRepository) BulkClear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles = make(map[types.UserID]*model.Profile)
	return nil
}
