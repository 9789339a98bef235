package config

import (
	"time"

	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
)

// Default sync policy values
const (
	DefaultTimeBudget        = 25 * time.Second
	DefaultMemberConcurrency = 8
)

// SyncPolicy controls the home sync job: which accounts are never rendered,
// how long one sync may run, and how wide the member fan-out goes.
type SyncPolicy struct {
	// ExcludedUsers are account IDs never shown in the home view
	// (service accounts, removed members)
	ExcludedUsers []types.UserID

	// TimeBudget is the wall-clock limit for one sync run. When exceeded,
	// member processing is truncated and a partial view is pushed.
	TimeBudget time.Duration

	// MemberConcurrency bounds the member detail fan-out
	MemberConcurrency int
}

// DefaultSyncPolicy returns the policy used when no config file is given.
// USLACKBOT is Slack's built-in service account and never has a city.
func DefaultSyncPolicy() *SyncPolicy {
	return &SyncPolicy{
		ExcludedUsers:     []types.UserID{"USLACKBOT"},
		TimeBudget:        DefaultTimeBudget,
		MemberConcurrency: DefaultMemberConcurrency,
	}
}

// IsExcluded reports whether the user is on the deny-list
func (x *SyncPolicy) IsExcluded(id types.UserID) bool {
	for _, excluded := range x.ExcludedUsers {
		if excluded == id {
			return true
		}
	}
	return false
}
