package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
	"github.com/yourtyme-app/yourtyme/pkg/service/worldtime"
	"github.com/yourtyme-app/yourtyme/pkg/usecase"
	"github.com/yourtyme-app/yourtyme/pkg/utils/errutil"
	"github.com/yourtyme-app/yourtyme/pkg/utils/logging"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Default().Error("failed to encode response", "error", err)
	}
}

// profileResponse is the API view of a profile. The OAuth token never
// leaves the server.
type profileResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	City        string    `json:"city"`
	TeamID      string    `json:"team_id,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProfileResponse(p *model.Profile) profileResponse {
	return profileResponse{
		ID:          p.ID.String(),
		DisplayName: p.DisplayName,
		City:        p.City,
		TeamID:      p.TeamID,
		UpdatedAt:   p.UpdatedAt,
	}
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "API is working",
	})
}

func worldtimeHandler(timeSvc worldtime.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		city := r.URL.Query().Get("city")
		if city == "" {
			errutil.HandleHTTP(ctx, w, goerr.New("city parameter is required"), http.StatusBadRequest)
			return
		}

		cityTime, err := timeSvc.Lookup(ctx, city)
		if err != nil {
			if errors.Is(err, model.ErrCityNotFound) {
				errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
				return
			}
			errutil.HandleHTTP(ctx, w, err, http.StatusBadGateway)
			return
		}

		respondJSON(w, http.StatusOK, cityTime)
	}
}

func authLoginHandler(auth *usecase.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := uuid.NewString()
		http.Redirect(w, r, auth.GetAuthURL(state), http.StatusFound)
	}
}

func authCallbackHandler(auth *usecase.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if errMsg := r.URL.Query().Get("error"); errMsg != "" {
			errutil.HandleHTTP(ctx, w, goerr.New("oauth denied", goerr.V("error", errMsg)), http.StatusBadRequest)
			return
		}

		profile, err := auth.HandleCallback(ctx, r.URL.Query().Get("code"))
		if err != nil {
			if errors.Is(err, model.ErrUnauthorized) {
				errutil.HandleHTTP(ctx, w, err, http.StatusUnauthorized)
				return
			}
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/dashboard?user_id="+profile.ID.String(), http.StatusFound)
	}
}

func getProfileHandler(profileUC *usecase.ProfileUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		profile, err := profileUC.Get(ctx, callerFrom(ctx))
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
				return
			}
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, toProfileResponse(profile))
	}
}

type updateNameRequest struct {
	Name string `json:"name"`
}

func updateNameHandler(profileUC *usecase.ProfileUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req updateNameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			errutil.HandleHTTP(ctx, w, goerr.New("name is required"), http.StatusBadRequest)
			return
		}

		profile, err := profileUC.UpdateDisplayName(ctx, callerFrom(ctx), req.Name)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, toProfileResponse(profile))
	}
}

type addCityRequest struct {
	City      string `json:"city"`
	ChannelID string `json:"channel_id"`
}

func addCityHandler(profileUC *usecase.ProfileUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req addCityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}
		if req.City == "" {
			errutil.HandleHTTP(ctx, w, goerr.New("city is required"), http.StatusBadRequest)
			return
		}

		profile, err := profileUC.SetCity(ctx, callerFrom(ctx), req.City, types.ChannelID(req.ChannelID))
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, toProfileResponse(profile))
	}
}

func getCityHandler(profileUC *usecase.ProfileUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		city, err := profileUC.GetCity(ctx, callerFrom(ctx))
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{"city": city})
	}
}

func deleteCityHandler(profileUC *usecase.ProfileUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		profile, err := profileUC.DeleteCity(ctx, callerFrom(ctx))
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
				return
			}
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, toProfileResponse(profile))
	}
}

func getCommunityHandler(communityUC *usecase.CommunityUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		channelID := types.ChannelID(chi.URLParam(r, "channelID"))
		community, err := communityUC.GetOrCreate(ctx, channelID, "", callerFrom(ctx))
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, community)
	}
}

func getMembersHandler(communityUC *usecase.CommunityUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		channelID := types.ChannelID(chi.URLParam(r, "channelID"))
		members, err := communityUC.GetMembers(ctx, channelID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
				return
			}
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{"members": members})
	}
}

func clearMembersHandler(communityUC *usecase.CommunityUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := communityUC.ClearAllMembers(ctx); err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{"message": "All members deleted"})
	}
}
