package slack_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	slackapi "github.com/slack-go/slack"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
	slacksvc "github.com/yourtyme-app/yourtyme/pkg/service/slack"
)

func blocksJSON(t *testing.T, blocks []slackapi.Block) string {
	t.Helper()
	data, err := json.Marshal(blocks)
	gt.NoError(t, err).Required()
	return string(data)
}

func sectionTexts(blocks []slackapi.Block) []string {
	var texts []string
	for _, b := range blocks {
		if section, ok := b.(*slackapi.SectionBlock); ok && section.Text != nil {
			texts = append(texts, section.Text.Text)
		}
	}
	return texts
}

func TestBuildHomeViewMemberFormat(t *testing.T) {
	self := &model.Profile{ID: "U1", City: "London"}
	groups := []slacksvc.ChannelGroup{
		{
			ChannelID:   "C1",
			ChannelName: "general",
			Members: []slacksvc.MemberEntry{
				{
					UserID:      "U2",
					DisplayName: "Jane Doe",
					City:        "London",
					TimeText:    "2024-01-01T10:00:00 (Europe/London)",
				},
			},
		},
	}

	blocks := slacksvc.BuildHomeView(self, groups, false)
	texts := sectionTexts(blocks)

	gt.Array(t, texts).Has("Your city: London")
	gt.Array(t, texts).Has("*Jane Doe*: city=London, time=2024-01-01T10:00:00 (Europe/London)")
}

func TestBuildHomeViewSentinels(t *testing.T) {
	self := &model.Profile{ID: "U1"}
	groups := []slacksvc.ChannelGroup{
		{
			ChannelID:   "C1",
			ChannelName: "general",
			Members: []slacksvc.MemberEntry{
				{UserID: "U2", DisplayName: "Amal", City: "Nairobi", TimeText: types.TimeUnavailable},
				{UserID: "U3", DisplayName: "Bo", City: types.CityNotSet},
				{UserID: "U4", DisplayName: "Cam", City: types.CityUnavailable},
			},
		},
	}

	blocks := slacksvc.BuildHomeView(self, groups, false)
	texts := sectionTexts(blocks)

	gt.Array(t, texts).Has("No city set.")
	gt.Array(t, texts).Has("*Amal*: city=Nairobi, time=Time unavailable")
	gt.Array(t, texts).Has("*Bo*: city=Not set")
	gt.Array(t, texts).Has("*Cam*: city=Database unavailable")
}

func TestBuildHomeViewGuidanceWhenNoResolvableCity(t *testing.T) {
	self := &model.Profile{ID: "U1", City: "London"}

	t.Run("no groups at all", func(t *testing.T) {
		blocks := slacksvc.BuildHomeView(self, nil, false)
		gt.Array(t, sectionTexts(blocks)).
			Has("No team members found. Join a channel and set your city to see timezones!")
	})

	t.Run("members exist but only sentinel cities", func(t *testing.T) {
		groups := []slacksvc.ChannelGroup{
			{
				ChannelID:   "C1",
				ChannelName: "general",
				Members: []slacksvc.MemberEntry{
					{UserID: "U2", DisplayName: "Bo", City: types.CityNotSet},
					{UserID: "U3", DisplayName: "Cam", City: types.CityUnavailable},
				},
			},
		}
		blocks := slacksvc.BuildHomeView(self, groups, false)
		texts := sectionTexts(blocks)
		gt.Array(t, texts).
			Has("No team members found. Join a channel and set your city to see timezones!")

		// Guidance replaces the per-channel listing entirely
		for _, text := range texts {
			gt.Value(t, text).NotEqual("*Bo*: city=Not set")
		}
	})
}

func TestBuildHomeViewTruncationNotice(t *testing.T) {
	self := &model.Profile{ID: "U1"}
	groups := []slacksvc.ChannelGroup{
		{
			ChannelID:   "C1",
			ChannelName: "general",
			Members: []slacksvc.MemberEntry{
				{UserID: "U2", DisplayName: "Jane", City: "London", TimeText: "2024-01-01T10:00:00 (Europe/London)"},
			},
		},
	}

	full := blocksJSON(t, slacksvc.BuildHomeView(self, groups, false))
	partial := blocksJSON(t, slacksvc.BuildHomeView(self, groups, true))

	gt.Value(t, full == partial).Equal(false)
	gt.String(t, partial).Contains("Showing partial data: not all members could be loaded in time.")
	gt.String(t, full).NotContains("Showing partial data")
}

func TestBuildHomeViewTruncationNoticeOnGuidance(t *testing.T) {
	// Every member was cut off, so only the guidance block renders. The
	// partial-data notice must survive that path too.
	self := &model.Profile{ID: "U1"}
	view := blocksJSON(t, slacksvc.BuildHomeView(self, nil, true))

	gt.String(t, view).Contains("No team members found")
	gt.String(t, view).Contains("Showing partial data: not all members could be loaded in time.")
}

func TestBuildHomeViewDeterministic(t *testing.T) {
	self := &model.Profile{ID: "U1", City: "Tokyo"}
	groups := []slacksvc.ChannelGroup{
		{
			ChannelID:   "C1",
			ChannelName: "general",
			Members: []slacksvc.MemberEntry{
				{UserID: "U2", DisplayName: "Jane", City: "London", TimeText: "2024-01-01T10:00:00 (Europe/London)"},
				{UserID: "U3", DisplayName: "Kofi", City: "Accra", TimeText: "2024-01-01T10:00:00 (Africa/Accra)"},
			},
		},
		{
			ChannelID:   "C2",
			ChannelName: "random",
			Members: []slacksvc.MemberEntry{
				{UserID: "U2", DisplayName: "Jane", City: "London", TimeText: "2024-01-01T10:00:00 (Europe/London)"},
			},
		},
	}

	first := blocksJSON(t, slacksvc.BuildHomeView(self, groups, false))
	for i := 0; i < 10; i++ {
		gt.Value(t, blocksJSON(t, slacksvc.BuildHomeView(self, groups, false))).Equal(first)
	}
}

func TestBuildHomeViewFallsBackToChannelID(t *testing.T) {
	self := &model.Profile{ID: "U1"}
	groups := []slacksvc.ChannelGroup{
		{
			ChannelID: "C9",
			Members: []slacksvc.MemberEntry{
				{UserID: "U2", DisplayName: "Jane", City: "London"},
			},
		},
	}

	data := blocksJSON(t, slacksvc.BuildHomeView(self, groups, false))
	gt.String(t, data).Contains("#C9")
}

func TestBuildFallbackView(t *testing.T) {
	blocks := slacksvc.BuildFallbackView()
	gt.Array(t, blocks).Length(2)
	gt.Array(t, sectionTexts(blocks)).
		Has("Error loading timezones. Please try reopening this tab.")
}

func TestBuildSetCityModal(t *testing.T) {
	view := slacksvc.BuildSetCityModal("C42")

	gt.Value(t, view.CallbackID).Equal(slacksvc.CallbackIDSetCityModal)
	gt.Value(t, view.PrivateMetadata).Equal("C42")
	gt.Value(t, view.Title.Text).Equal("Set Your City")
	gt.Array(t, view.Blocks.BlockSet).Length(1)

	input := gt.Cast[*slackapi.InputBlock](t, view.Blocks.BlockSet[0])
	gt.Value(t, input.BlockID).Equal(slacksvc.BlockIDCityInput)
}
