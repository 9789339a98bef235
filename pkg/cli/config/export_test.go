package config

// NewSync creates a Sync config for testing purposes
func NewSync(policyPath string) *Sync {
	return &Sync{policyPath: policyPath}
}
