// Package modkit provides module wiring and core deps
package modkit

import (
	"expiryai/internal/modkit/repokit"
	"expiryai/internal/platform/config"
	"expiryai/internal/platform/logger"
	"expiryai/internal/platform/metrics"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	PG      repokit.TxRunner
	Metrics *metrics.Engine
}
