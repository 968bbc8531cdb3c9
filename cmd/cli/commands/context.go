package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/daycentre-transport/internal/config"
	"github.com/jakechorley/daycentre-transport/pkg/core/services"
	"github.com/jakechorley/daycentre-transport/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg     *config.Config
	Store   db.Gateway
	Options services.Options
	Logger  *zap.Logger
	Ctx     context.Context
}
