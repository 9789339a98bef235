package usecase

import "github.com/yourtyme-app/yourtyme/pkg/utils/retryutil"

// SetRetryPolicies is exported for testing: it collapses every retry delay so
// degradation paths can be exercised without waiting out real backoff.
func (uc *HomeSyncUseCase) SetRetryPolicies(p retryutil.Policy) {
	uc.channelRetry = p
	uc.storeRetry = p
	uc.timeRetry = p
	uc.publishRetry = p
}
