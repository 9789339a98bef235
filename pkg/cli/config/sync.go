package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	domainConfig "github.com/yourtyme-app/yourtyme/pkg/domain/model/config"
	"github.com/yourtyme-app/yourtyme/pkg/domain/types"
)

// Sync holds CLI flags for the home sync policy
type Sync struct {
	policyPath string
}

// syncPolicyFile is the TOML representation of the sync policy
type syncPolicyFile struct {
	ExcludedUsers     []string `toml:"excluded_users"`
	TimeBudget        string   `toml:"time_budget"`
	MemberConcurrency int      `toml:"member_concurrency"`
}

func (x *Sync) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sync-policy",
			Usage:       "Path to a TOML file with the home sync policy (excluded_users, time_budget, member_concurrency)",
			Category:    "Sync",
			Destination: &x.policyPath,
			Sources:     cli.EnvVars("YOURTYME_SYNC_POLICY"),
		},
	}
}

// Configure loads the sync policy. Fields missing from the file keep their
// defaults; without a file the whole default policy is returned.
func (x *Sync) Configure() (*domainConfig.SyncPolicy, error) {
	policy := domainConfig.DefaultSyncPolicy()
	if x.policyPath == "" {
		return policy, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(x.policyPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read sync policy file", goerr.V("path", x.policyPath))
	}

	var file syncPolicyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML sync policy", goerr.V("path", x.policyPath))
	}

	if file.ExcludedUsers != nil {
		excluded := make([]types.UserID, 0, len(file.ExcludedUsers))
		for _, id := range file.ExcludedUsers {
			uid := types.UserID(id)
			if err := uid.Validate(); err != nil {
				return nil, goerr.Wrap(err, "invalid excluded user ID", goerr.V("id", id))
			}
			excluded = append(excluded, uid)
		}
		policy.ExcludedUsers = excluded
	}

	if file.TimeBudget != "" {
		budget, err := time.ParseDuration(file.TimeBudget)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid time_budget", goerr.V("value", file.TimeBudget))
		}
		if budget <= 0 {
			return nil, goerr.New("time_budget must be positive", goerr.V("value", file.TimeBudget))
		}
		policy.TimeBudget = budget
	}

	if file.MemberConcurrency != 0 {
		if file.MemberConcurrency < 0 {
			return nil, goerr.New("member_concurrency must be positive", goerr.V("value", file.MemberConcurrency))
		}
		policy.MemberConcurrency = file.MemberConcurrency
	}

	return policy, nil
}
