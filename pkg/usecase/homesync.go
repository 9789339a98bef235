package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yourtyme-app/yourtyme/pkg/domain/interfaces"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model/config"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
	slacksvc "github.com/yourtyme-app/yourtyme/pkg/service/slack"
	"github.com/yourtyme-app/yourtyme/pkg/service/worldtime"
	"github.com/yourtyme-app/yourtyme/pkg/utils/logging"
	"github.com/yourtyme-app/yourtyme/pkg/utils/retryutil"
	"golang.org/x/sync/errgroup"
)

// HomeSyncUseCase rebuilds a user's App Home view: it aggregates channel
// membership, per-member city and local time, and publishes the assembled
// block document. No single external failure is fatal; every call degrades
// to a sentinel value and the worst outcome is a visibly partial view.
type HomeSyncUseCase struct {
	repo     interfaces.Repository
	slackSvc slacksvc.Service
	timeSvc  worldtime.Client
	policy   *config.SyncPolicy

	channelRetry retryutil.Policy
	storeRetry   retryutil.Policy
	timeRetry    retryutil.Policy
	publishRetry retryutil.Policy
}

func NewHomeSyncUseCase(repo interfaces.Repository, slackSvc slacksvc.Service, timeSvc worldtime.Client, policy *config.SyncPolicy) *HomeSyncUseCase {
	if policy == nil {
		policy = config.DefaultSyncPolicy()
	}

	return &HomeSyncUseCase{
		repo:     repo,
		slackSvc: slackSvc,
		timeSvc:  timeSvc,
		policy:   policy,

		channelRetry: retryutil.Exponential(5, 500*time.Millisecond),
		storeRetry:   retryutil.Fixed(3, 300*time.Millisecond),
		timeRetry:    retryutil.Fixed(2, 200*time.Millisecond),
		publishRetry: retryutil.Exponential(5, 500*time.Millisecond),
	}
}

// channelMembers pairs a channel with its raw member identity list
type channelMembers struct {
	channel slacksvc.Channel
	members []types.UserID
}

// Sync rebuilds and publishes the home view for one user. The whole run is
// bounded by the policy's time budget; when exceeded, member processing is
// truncated and a partial view is pushed.
func (uc *HomeSyncUseCase) Sync(ctx context.Context, userID types.UserID) error {
	if uc.slackSvc == nil {
		return ErrNoSlackService
	}
	if err := userID.Validate(); err != nil {
		return goerr.Wrap(err, "home sync requires a user ID")
	}

	ctx, cancel := context.WithTimeout(ctx, uc.policy.TimeBudget)
	defer cancel()

	self := uc.loadSelf(ctx, userID)
	kept := uc.collectChannels(ctx)

	// Union of candidate members across channels: seen once, resolved once.
	// Sorted so a fixed set of collaborator responses yields a fixed view.
	candidateSet := make(map[types.UserID]struct{})
	for _, cm := range kept {
		for _, id := range cm.members {
			if uc.policy.IsExcluded(id) {
				continue
			}
			candidateSet[id] = struct{}{}
		}
	}
	candidates := make([]types.UserID, 0, len(candidateSet))
	for id := range candidateSet {
		candidates = append(candidates, id)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

	resolved, truncated := uc.resolveMembers(ctx, candidates)

	groups := make([]slacksvc.ChannelGroup, 0, len(kept))
	for _, cm := range kept {
		entries := make([]slacksvc.MemberEntry, 0, len(cm.members))
		for _, id := range cm.members {
			if entry, ok := resolved[id]; ok {
				entries = append(entries, entry)
			}
		}
		if len(entries) == 0 {
			continue
		}
		groups = append(groups, slacksvc.ChannelGroup{
			ChannelID:   cm.channel.ID,
			ChannelName: cm.channel.Name,
			Members:     entries,
		})
	}

	blocks := slacksvc.BuildHomeView(self, groups, truncated)

	// The push must go out even when the time budget is already spent
	pushCtx := context.WithoutCancel(ctx)
	err := retryutil.Do(pushCtx, "publish home view", uc.publishRetry, func() error {
		return uc.slackSvc.PublishHomeView(pushCtx, userID, blocks)
	})
	if err == nil {
		return nil
	}

	logging.From(ctx).Error("failed to publish home view, pushing fallback",
		"user_id", userID, "error", err.Error())

	// Fallback is best-effort: its failure is logged, not retried further
	if fbErr := uc.slackSvc.PublishHomeView(pushCtx, userID, slacksvc.BuildFallbackView()); fbErr != nil {
		logging.From(ctx).Error("failed to publish fallback view",
			"user_id", userID, "error", fbErr.Error())
	}

	return goerr.Wrap(err, "home sync publish failed", goerr.V("user_id", userID))
}

// loadSelf fetches the triggering user's own profile, degrading to an empty
// profile (no city) when the store is unreachable or the user is unknown.
func (uc *HomeSyncUseCase) loadSelf(ctx context.Context, userID types.UserID) *model.Profile {
	profile, err := retryutil.DoWithData(ctx, "get own profile", uc.storeRetry, func() (*model.Profile, error) {
		p, err := uc.repo.Profile().Get(ctx, userID)
		if err != nil && errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return p, err
	})
	if err != nil {
		logging.From(ctx).Warn("failed to load own profile, rendering without city",
			"user_id", userID, "error", err.Error())
	}
	if profile == nil {
		profile = &model.Profile{ID: userID}
	}
	return profile
}

// collectChannels enumerates bot-visible channels and their member lists.
// Exhausted retries degrade to an empty result; channels with at most one
// member (only the bot itself) are dropped.
func (uc *HomeSyncUseCase) collectChannels(ctx context.Context) []channelMembers {
	logger := logging.From(ctx)

	channels, err := retryutil.DoWithData(ctx, "list channels", uc.channelRetry, func() ([]slacksvc.Channel, error) {
		return uc.slackSvc.ListChannels(ctx)
	})
	if err != nil {
		logger.Warn("channel enumeration failed, proceeding with empty list", "error", err.Error())
		return nil
	}

	var kept []channelMembers
	for _, channel := range channels {
		ch := channel
		members, err := retryutil.DoWithData(ctx, "list channel members", uc.channelRetry, func() ([]types.UserID, error) {
			return uc.slackSvc.ListMembers(ctx, ch.ID)
		})
		if err != nil {
			logger.Warn("member enumeration failed, skipping channel",
				"channel_id", ch.ID, "error", err.Error())
			continue
		}
		if len(members) <= 1 {
			continue
		}
		kept = append(kept, channelMembers{channel: ch, members: members})
	}

	return kept
}

// resolveMembers fans out display name, city and local time resolution for
// the candidate set. Concurrency is bounded; one member's failure degrades
// only that member's entry and never cancels the others. Candidates skipped
// because the time budget ran out are reported via the truncated flag.
func (uc *HomeSyncUseCase) resolveMembers(ctx context.Context, candidates []types.UserID) (map[types.UserID]slacksvc.MemberEntry, bool) {
	resolved := make(map[types.UserID]slacksvc.MemberEntry, len(candidates))
	var mu sync.Mutex
	var truncated atomic.Bool

	var g errgroup.Group
	g.SetLimit(uc.policy.MemberConcurrency)

	for _, id := range candidates {
		g.Go(func() error {
			if ctx.Err() != nil {
				truncated.Store(true)
				return nil
			}

			entry, ok := uc.resolveMember(ctx, id, &truncated)
			if !ok {
				return nil
			}

			mu.Lock()
			resolved[id] = entry
			mu.Unlock()
			return nil
		})
	}

	// Workers only degrade, never fail
	_ = g.Wait()

	return resolved, truncated.Load()
}

// resolveMember resolves one member's entry. The second return value is false
// for accounts that must not appear at all (bots, deleted users) and for
// members whose resolution was cut short by the time budget.
func (uc *HomeSyncUseCase) resolveMember(ctx context.Context, id types.UserID, truncated *atomic.Bool) (slacksvc.MemberEntry, bool) {
	entry := slacksvc.MemberEntry{
		UserID:      id,
		DisplayName: id.String(),
	}

	user, err := retryutil.DoWithData(ctx, "get user info", uc.storeRetry, func() (*slacksvc.User, error) {
		return uc.slackSvc.GetUserInfo(ctx, id)
	})
	if err != nil {
		logging.From(ctx).Warn("failed to resolve display name, using raw identity",
			"user_id", id, "error", err.Error())
	} else {
		if user.IsBot || user.Deleted {
			return entry, false
		}
		if user.DisplayName != "" {
			entry.DisplayName = user.DisplayName
		}
	}

	profile, err := retryutil.DoWithData(ctx, "get member city", uc.storeRetry, func() (*model.Profile, error) {
		p, err := uc.repo.Profile().Get(ctx, id)
		if err != nil && errors.Is(err, model.ErrNotFound) {
			// Absent profile is a result, not a retryable failure
			return nil, nil
		}
		return p, err
	})
	switch {
	case err != nil && ctx.Err() != nil:
		// The budget expired mid-retry. The member is dropped and the view
		// is marked partial instead of blaming the store.
		truncated.Store(true)
		return entry, false
	case err != nil:
		entry.City = types.CityUnavailable
		return entry, true
	case !profile.HasCity():
		entry.City = types.CityNotSet
		return entry, true
	}

	entry.City = profile.City

	if uc.timeSvc == nil {
		entry.TimeText = types.TimeUnavailable
		return entry, true
	}

	cityTime, err := retryutil.DoWithData(ctx, "worldtime lookup", uc.timeRetry, func() (*model.CityTime, error) {
		return uc.timeSvc.Lookup(ctx, entry.City)
	})
	if err != nil {
		entry.TimeText = types.TimeUnavailable
		return entry, true
	}

	entry.TimeText = cityTime.Display()
	return entry, true
}
