package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yourtyme-app/yourtyme/pkg/domain/interfaces"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
)

type communityRepository struct {
	mu          sync.RWMutex
	communities map[types.ChannelID]*model.Community
}

var _ interfaces.CommunityRepository = &communityRepository{}

func newCommunityRepository() *communityRepository {
	return &communityRepository{
		communities: make(map[types.ChannelID]*model.Community),
	}
}

func copyCommunity(c *model.Community) *model.Community {
	communityCopy := *c
	communityCopy.Members = make([]model.MemberSnapshot, len(c.Members))
	copy(communityCopy.Members, c.Members)
	return &communityCopy
}

// Get retrieves a community by channel ID
func (r *communityRepository) Get(ctx context.Context, id types.ChannelID) (*model.Community, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	community, ok := r.communities[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "community not found", goerr.V("channel_id", id))
	}

	return copyCommunity(community), nil
}

// Create stores a community if the channel has no entry yet
func (r *communityRepository) Create(ctx context.Context, community *model.Community) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.communities[community.ChannelID]; ok {
		return nil
	}

	r.communities[community.ChannelID] = copyCommunity(community)
	return nil
}

// AddMemberSnapshot appends a member snapshot with set-union semantics:
// an identical {id, displayName, city} tuple is suppressed.
func (r *communityRepository) AddMemberSnapshot(ctx context.Context, id types.ChannelID, snapshot model.MemberSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	community, ok := r.communities[id]
	if !ok {
		community = &model.Community{
			ChannelID:   id,
			ChannelName: model.DefaultChannelName,
		}
		r.communities[id] = community
	}

	if community.HasMember(snapshot) {
		return nil
	}

	community.Members = append(community.Members, snapshot)
	return nil
}

// ListAll retrieves every community
func (r *communityRepository) ListAll(ctx context.Context) ([]*model.Community, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	communities := make([]*model.Community, 0, len(r.communities))
	for _, c := range r.communities {
		communities = append(communities, copyCommunity(c))
	}

	return communities, nil
}

// ReplaceMembers overwrites a community's member roster
func (r *communityRepository) ReplaceMembers(ctx context.Context, id types.ChannelID, members []model.MemberSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	community, ok := r.communities[id]
	if !ok {
		return goerr.Wrap(model.ErrNotFound, "community not found", goerr.V("channel_id", id))
	}

	community.Members = make([]model.MemberSnapshot, len(members))
	copy(community.Members, members)
	return nil
}

// ClearAllMembers empties the member roster of every community
func (r *communityRepository) ClearAllMembers(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.communities {
		c.Members = nil
	}
	return nil
}
