package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// UserID represents a unique identifier for a Slack user (e.g. "U0123456789")
type UserID string

// Validate checks if the UserID is valid
func (x UserID) Validate() error {
	if x == "" {
		return goerr.New("user ID cannot be empty")
	}
	return nil
}

// String returns the string representation of UserID
func (x UserID) String() string {
	return string(x)
}

// ChannelID represents a unique identifier for a Slack channel (e.g. "C0123456789")
type ChannelID string

// Validate checks if the ChannelID is valid
func (x ChannelID) Validate() error {
	if x == "" {
		return goerr.New("channel ID cannot be empty")
	}
	return nil
}

// String returns the string representation of ChannelID
func (x ChannelID) String() string {
	return string(x)
}
