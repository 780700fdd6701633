package httpapi

import (
	"database/sql"
	"sync/atomic"

	"govsignal-engine/internal/config"
	"govsignal-engine/internal/events"
	"govsignal-engine/internal/registry"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	Registry registry.Registry

	// Pipeline surface (inject for testability)
	Pipe Runner

	// Live values, swapped at runtime
	CfgVal   *atomic.Value // stores config.Config
	TokenVal *atomic.Value // stores the admin token string

	// Config file plumbing
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
