package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
	slacksvc "github.com/yourtyme-app/yourtyme/pkg/service/slack"
	"github.com/yourtyme-app/yourtyme/pkg/usecase"
	"github.com/yourtyme-app/yourtyme/pkg/utils/async"
	"github.com/yourtyme-app/yourtyme/pkg/utils/errutil"
	"github.com/yourtyme-app/yourtyme/pkg/utils/logging"
)

// SlackInteractionHandler handles Slack interactivity webhook requests
// (block actions and view submissions).
type SlackInteractionHandler struct {
	uc *usecase.UseCases
}

// NewSlackInteractionHandler creates a new Slack interaction handler
func NewSlackInteractionHandler(uc *usecase.UseCases) *SlackInteractionHandler {
	return &SlackInteractionHandler{uc: uc}
}

func (h *SlackInteractionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse form"), http.StatusBadRequest)
		return
	}

	payload := r.FormValue("payload")
	if payload == "" {
		errutil.HandleHTTP(ctx, w, goerr.New("missing payload"), http.StatusBadRequest)
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &callback); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to unmarshal interaction payload"), http.StatusBadRequest)
		return
	}

	switch callback.Type {
	case slack.InteractionTypeBlockActions:
		// Ack first, then open the modal in the background
		w.WriteHeader(http.StatusOK)
		h.dispatchBlockActions(ctx, &callback)

	case slack.InteractionTypeViewSubmission:
		w.WriteHeader(http.StatusOK)
		h.dispatchViewSubmission(ctx, &callback)

	default:
		logging.From(ctx).Warn("unknown interaction type", "type", callback.Type)
		w.WriteHeader(http.StatusOK)
	}
}

func (h *SlackInteractionHandler) dispatchBlockActions(ctx context.Context, callback *slack.InteractionCallback) {
	for _, action := range callback.ActionCallback.BlockActions {
		if action.ActionID != slacksvc.ActionIDSetCity {
			logging.From(ctx).Warn("unknown block action", "action_id", action.ActionID)
			continue
		}

		triggerID := callback.TriggerID
		channelID := callback.Channel.ID
		async.Dispatch(ctx, func(ctx context.Context) error {
			view := slacksvc.BuildSetCityModal(channelID)
			if err := h.uc.OpenModal(ctx, triggerID, view); err != nil {
				return goerr.Wrap(err, "failed to open set city modal")
			}
			return nil
		})
	}
}

func (h *SlackInteractionHandler) dispatchViewSubmission(ctx context.Context, callback *slack.InteractionCallback) {
	if callback.View.CallbackID != slacksvc.CallbackIDSetCityModal {
		logging.From(ctx).Warn("unknown view submission", "callback_id", callback.View.CallbackID)
		return
	}

	userID := types.UserID(callback.User.ID)
	channelID := types.ChannelID(callback.View.PrivateMetadata)
	city := extractCityInput(&callback.View)

	async.Dispatch(ctx, func(ctx context.Context) error {
		city = strings.TrimSpace(city)
		if city == "" {
			return goerr.New("empty city input", goerr.V("user_id", userID))
		}

		if _, err := h.uc.Profile.SetCity(ctx, userID, city, channelID); err != nil {
			// Let the user know the submission failed via DM, best effort.
			msg := "Failed to save your city. Please try again."
			if dmErr := h.uc.PostMessage(ctx, string(userID), msg); dmErr != nil {
				logging.From(ctx).Error("failed to notify user of set city failure", "error", dmErr)
			}
			return goerr.Wrap(err, "failed to set city",
				goerr.V("user_id", userID), goerr.V("city", city))
		}

		msg := fmt.Sprintf("City set to %s! Check the App Home tab to see your team's timezones.", city)
		if err := h.uc.PostMessage(ctx, string(userID), msg); err != nil {
			logging.From(ctx).Error("failed to send confirmation message", "error", err)
		}

		// Refresh the submitter's home view with the new city
		if err := h.uc.HomeSync.Sync(ctx, userID); err != nil {
			return goerr.Wrap(err, "failed to refresh home view after set city")
		}
		return nil
	})
}

// extractCityInput pulls the city value out of the modal submission state.
func extractCityInput(view *slack.View) string {
	if view.State == nil {
		return ""
	}
	block, ok := view.State.Values[slacksvc.BlockIDCityInput]
	if !ok {
		return ""
	}
	return block[slacksvc.ActionIDCityInput].Value
}
