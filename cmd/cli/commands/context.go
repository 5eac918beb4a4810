package commands

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/jakechorley/supply-board/internal/config"
	"github.com/jakechorley/supply-board/pkg/clients/sheetsclient"
	"github.com/jakechorley/supply-board/pkg/core/services"
	"github.com/jakechorley/supply-board/pkg/dataio"
	"github.com/jakechorley/supply-board/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Database db.PlanStore
	Logger   *zap.Logger
	Ctx      context.Context
	Out      io.Writer

	sheetsClient *sheetsclient.Client
}

// SheetsClient returns the Google Sheets client, authenticating on first use
func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	if app.sheetsClient != nil {
		return app.sheetsClient, nil
	}
	if app.Cfg.Sheets == nil {
		return nil, fmt.Errorf("no sheets section in supply_board_config.%s.yaml", app.Env)
	}

	app.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClient(app.Env, app.Cfg.Sheets)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	app.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(app.Ctx, oauthCfg, app.Env, app.Cfg.Sheets.RequestsPerSecond, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.sheetsClient = client
	return client, nil
}

// Source returns where board inputs are read from. CSV files win when both are configured.
func (app *AppContext) Source() (services.Source, error) {
	if src := app.Cfg.Sources; src != nil {
		return dataio.CSVFiles{
			Suppliers:         src.Suppliers,
			Demand:            src.Demand,
			SupplierDistances: src.SupplierDistances,
			StopDistances:     src.StopDistances,
		}, nil
	}

	client, err := app.SheetsClient()
	if err != nil {
		return nil, err
	}
	return sheetsclient.NewSource(client, *app.Cfg.Sheets), nil
}

func (app *AppContext) printf(format string, args ...any) {
	fmt.Fprintf(app.Out, format, args...)
}
