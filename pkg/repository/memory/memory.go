package memory

import (
	"github.com/yourtyme-app/yourtyme/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	profile   *profileRepository
	community *communityRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		profile:   newProfileRepository(),
		community: newCommunityRepository(),
	}
}

func (m *Memory) Profile() interfaces.ProfileRepository {
	return m.profile
}

func (m *Memory) Community() interfaces.CommunityRepository {
	return m.community
}

func (m *Memory) Close() error {
	return nil
}
