package module

import "expiryai/internal/platform/config"

// Options for the identity module
type Options struct {
	WeightsFile string
}

// FromConfig fills options from environment
// CORE_EXPIRY_ROLE_WEIGHTS_FILE (default "") is a YAML file overriding the role weight table
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_EXPIRY_")
	return Options{
		WeightsFile: c.MayString("ROLE_WEIGHTS_FILE", ""),
	}
}
