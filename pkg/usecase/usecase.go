package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/yourtyme-app/yourtyme/pkg/domain/interfaces"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model/config"
	slacksvc "github.com/yourtyme-app/yourtyme/pkg/service/slack"
	"github.com/yourtyme-app/yourtyme/pkg/service/worldtime"
)

// ErrNoSlackService is returned when a Slack-dependent operation is invoked
// without a configured Slack client.
var ErrNoSlackService = goerr.New("slack service is not configured")

type UseCases struct {
	repo       interfaces.Repository
	slackSvc   slacksvc.Service
	timeSvc    worldtime.Client
	syncPolicy *config.SyncPolicy

	Profile   *ProfileUseCase
	Community *CommunityUseCase
	HomeSync  *HomeSyncUseCase
	Auth      *AuthUseCase
}

type Option func(*UseCases)

func WithSlackService(svc slacksvc.Service) Option {
	return func(uc *UseCases) {
		uc.slackSvc = svc
	}
}

func WithWorldtime(client worldtime.Client) Option {
	return func(uc *UseCases) {
		uc.timeSvc = client
	}
}

func WithSyncPolicy(policy *config.SyncPolicy) Option {
	return func(uc *UseCases) {
		uc.syncPolicy = policy
	}
}

func WithAuth(auth *AuthUseCase) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

// OpenModal opens a modal view via the Slack service. It returns
// ErrNoSlackService when no Slack client is configured.
func (uc *UseCases) OpenModal(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	if uc.slackSvc == nil {
		return ErrNoSlackService
	}
	return uc.slackSvc.OpenModal(ctx, triggerID, view)
}

// PostMessage sends a plain text message via the Slack service
func (uc *UseCases) PostMessage(ctx context.Context, channelID string, text string) error {
	if uc.slackSvc == nil {
		return ErrNoSlackService
	}
	return uc.slackSvc.PostMessage(ctx, channelID, text)
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:       repo,
		syncPolicy: config.DefaultSyncPolicy(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Profile = NewProfileUseCase(repo)
	uc.Community = NewCommunityUseCase(repo)
	uc.HomeSync = NewHomeSyncUseCase(repo, uc.slackSvc, uc.timeSvc, uc.syncPolicy)

	return uc
}
