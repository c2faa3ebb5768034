package httpapi

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"orbit-tracker/internal/config"
	"orbit-tracker/internal/tracker"
)

// Checkpointer is implemented by stores that keep a write-ahead log.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

type Deps struct {
	Service *tracker.Service
	Log     *logrus.Logger

	// Atomic store
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Nil unless the sqlite backend is in use.
	Checkpointer Checkpointer
}
