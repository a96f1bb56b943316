package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/erazemk/toolshed/internal/client"
	"github.com/erazemk/toolshed/internal/config"
	"github.com/erazemk/toolshed/internal/db"
	"github.com/erazemk/toolshed/internal/session"
	"github.com/erazemk/toolshed/internal/workflow"
)

// app wires the components every command shares.
type app struct {
	db      *sql.DB
	session *session.Session
	api     *client.Client
	ctrl    *workflow.Controller
	review  *workflow.Review
	catalog *workflow.Catalog
}

// openApp opens the local state file and builds the components. reg
// receives the client metrics and may be nil.
func openApp(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*app, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	sess, err := session.Open(ctx, database)
	if err != nil {
		database.Close()
		return nil, err
	}

	var opts []client.Option
	if reg != nil {
		opts = append(opts, client.WithMetrics(client.NewMetrics(reg)))
	}
	api := client.New(cfg.APIURL, sess, opts...)

	return &app{
		db:      database,
		session: sess,
		api:     api,
		ctrl: workflow.NewController(api, database, sess, workflow.Options{
			SendReturnMetadata: cfg.SendReturnMetadata,
			NotificationTTL:    cfg.NotificationTTL,
		}),
		review:  workflow.NewReview(api, database, cfg.NotificationTTL),
		catalog: workflow.NewCatalog(api, cfg.NotificationTTL),
	}, nil
}

func (a *app) Close() {
	a.ctrl.Close()
	a.db.Close()
}
