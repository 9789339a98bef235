package slack

import (
	"fmt"

	"github.com/slack-go/slack"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
)

// Interaction identifiers shared between the view builder and the
// interaction handler
const (
	ActionIDSetCity        = "set_city"
	CallbackIDSetCityModal = "set_city_modal"
	BlockIDCityInput       = "city"
	ActionIDCityInput      = "user_city"
)

// MemberEntry is one member's resolved state, ready for rendering. City is a
// real city name or a sentinel literal; TimeText is the formatted local time,
// a sentinel, or empty when no city was available to look up.
type MemberEntry struct {
	UserID      types.UserID
	DisplayName string
	City        string
	TimeText    string
}

// ChannelGroup is the per-channel slice of the home view
type ChannelGroup struct {
	ChannelID   types.ChannelID
	ChannelName string
	Members     []MemberEntry
}

// BuildHomeView assembles the App Home block sequence from the viewer's own
// profile and the per-channel member entries. Pure and deterministic: no I/O,
// identical inputs yield identical blocks.
func BuildHomeView(self *model.Profile, groups []ChannelGroup, truncated bool) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(plainText("Timezone Tool")),
	}

	selfText := "No city set."
	if self.HasCity() {
		selfText = fmt.Sprintf("Your city: %s", self.City)
	}
	blocks = append(blocks,
		slack.NewSectionBlock(markdownText(selfText), nil, nil),
		slack.NewActionBlock("home_actions",
			slack.NewButtonBlockElement(ActionIDSetCity, "", plainText("Set City")),
		),
	)

	hasResolvableCity := false
	for _, group := range groups {
		for _, m := range group.Members {
			if m.City != "" && m.City != types.CityNotSet && m.City != types.CityUnavailable {
				hasResolvableCity = true
			}
		}
	}

	if len(groups) == 0 || !hasResolvableCity {
		blocks = append(blocks, slack.NewSectionBlock(
			markdownText("No team members found. Join a channel and set your city to see timezones!"),
			nil, nil,
		))
		if truncated {
			blocks = appendTruncationNotice(blocks)
		}
		return blocks
	}

	for _, group := range groups {
		name := group.ChannelName
		if name == "" {
			name = group.ChannelID.String()
		}
		blocks = append(blocks,
			slack.NewDividerBlock(),
			slack.NewHeaderBlock(plainText("#"+name)),
		)

		for _, m := range group.Members {
			blocks = append(blocks, slack.NewSectionBlock(markdownText(formatMember(m)), nil, nil))
		}
	}

	if truncated {
		blocks = appendTruncationNotice(blocks)
	}

	return blocks
}

func appendTruncationNotice(blocks []slack.Block) []slack.Block {
	return append(blocks,
		slack.NewDividerBlock(),
		slack.NewContextBlock("partial_notice",
			markdownText("Showing partial data: not all members could be loaded in time."),
		),
	)
}

func formatMember(m MemberEntry) string {
	if m.TimeText == "" {
		return fmt.Sprintf("*%s*: city=%s", m.DisplayName, m.City)
	}
	return fmt.Sprintf("*%s*: city=%s, time=%s", m.DisplayName, m.City, m.TimeText)
}

// BuildFallbackView is the minimal view pushed when the sync job failed hard
func BuildFallbackView() []slack.Block {
	return []slack.Block{
		slack.NewHeaderBlock(plainText("Timezone Tool")),
		slack.NewSectionBlock(
			markdownText("Error loading timezones. Please try reopening this tab."),
			nil, nil,
		),
	}
}

// BuildSetCityModal returns the city input modal. channelID is carried in
// private_metadata so the submission can update the channel's roster.
func BuildSetCityModal(channelID string) slack.ModalViewRequest {
	cityInput := slack.NewInputBlock(
		BlockIDCityInput,
		plainText("City (e.g., London)"),
		nil,
		slack.NewPlainTextInputBlockElement(plainText("City name"), ActionIDCityInput),
	)

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      CallbackIDSetCityModal,
		Title:           plainText("Set Your City"),
		Submit:          plainText("Save"),
		Close:           plainText("Cancel"),
		Blocks:          slack.Blocks{BlockSet: []slack.Block{cityInput}},
		PrivateMetadata: channelID,
	}
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, false, false)
}

func markdownText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}
