package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/kestrelfp/deal-allocator/internal/config"
	"github.com/kestrelfp/deal-allocator/pkg/clients/calendarclient"
	"github.com/kestrelfp/deal-allocator/pkg/clients/crmclient"
	"github.com/kestrelfp/deal-allocator/pkg/core/quota"
	"github.com/kestrelfp/deal-allocator/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg            *config.Config
	CRMClient      *crmclient.Client
	CalendarClient *calendarclient.Client
	Database       db.Database
	Overrides      quota.OverrideRepository
	Logger         *zap.Logger
	Ctx            context.Context
}
