// Package app wires the store, the fan-out engine and every domain service
// into one dependency graph so entry points only deal with configuration.
package app

import (
	"context"
	"net/http"

	"go-workdesk/internal/activity"
	"go-workdesk/internal/attendance"
	"go-workdesk/internal/config"
	"go-workdesk/internal/crm"
	"go-workdesk/internal/leave"
	"go-workdesk/internal/notify"
	"go-workdesk/internal/project"
	"go-workdesk/internal/rbac"
	"go-workdesk/internal/remote"
	"go-workdesk/internal/store"
	"go-workdesk/internal/support"
	"go-workdesk/internal/task"
	"go-workdesk/internal/user"

	"go.uber.org/zap"
)

type App struct {
	Store    *store.Store
	Enforcer *rbac.Enforcer
	Fanout   *notify.Engine
	Audit    *activity.Recorder

	Users         user.Service
	Tasks         task.Service
	Projects      project.Service
	Leaves        leave.Service
	Attendance    attendance.Service
	Support       support.Service
	Notifications notify.Service

	UserTable *store.Table[user.User]
	CRM       *crm.Tables
}

// Build opens the record store described by cfg and constructs the full
// service graph on top of it. When cfg.BackendURL is set, the remote REST
// backend replaces the embedded SQLite file; everything above the store is
// identical in both modes.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.L()
	}

	registry, err := NewRegistry()
	if err != nil {
		return nil, err
	}

	var st *store.Store
	if cfg.BackendURL != "" {
		client := remote.NewClient(cfg.BackendURL, cfg.BackendRPS, &http.Client{Timeout: cfg.HTTPTimeout}, logger)
		st = store.NewWithBackend(client, registry, logger)
		logger.Info("using remote record backend", zap.String("url", cfg.BackendURL))
	} else {
		st, err = store.Open(ctx, cfg.DBPath, registry, logger)
		if err != nil {
			return nil, err
		}
	}

	a, err := buildServices(st, cfg, logger)
	if err != nil {
		st.Close()
		return nil, err
	}
	return a, nil
}

func buildServices(st *store.Store, cfg config.Config, logger *zap.Logger) (*App, error) {
	users, err := user.NewTable(st)
	if err != nil {
		return nil, err
	}
	tasks, err := task.NewTable(st)
	if err != nil {
		return nil, err
	}
	projects, err := project.NewTable(st)
	if err != nil {
		return nil, err
	}
	teams, err := project.NewTeamTable(st)
	if err != nil {
		return nil, err
	}
	leaves, err := leave.NewTable(st)
	if err != nil {
		return nil, err
	}
	records, err := attendance.NewTable(st)
	if err != nil {
		return nil, err
	}
	tickets, err := support.NewTable(st)
	if err != nil {
		return nil, err
	}
	notifications, err := notify.NewTable(st)
	if err != nil {
		return nil, err
	}
	entries, err := activity.NewTable(st)
	if err != nil {
		return nil, err
	}
	crmTables, err := crm.NewTables(st)
	if err != nil {
		return nil, err
	}

	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return nil, err
	}
	fanout := notify.NewEngine(notifications, users, logger)
	audit := activity.NewRecorder(entries, logger)

	return &App{
		Store:    st,
		Enforcer: enforcer,
		Fanout:   fanout,
		Audit:    audit,

		Users:         user.NewService(users, logger),
		Tasks:         task.NewService(tasks, fanout, enforcer, audit, logger),
		Projects:      project.NewService(projects, teams, enforcer, audit, logger),
		Leaves:        leave.NewService(leaves, fanout, enforcer, audit, logger),
		Attendance:    attendance.NewService(records, fanout, enforcer, audit, cfg.LateCutoff, logger),
		Support:       support.NewService(tickets, fanout, enforcer, audit, logger),
		Notifications: notify.NewService(notifications, logger),

		UserTable: users,
		CRM:       crmTables,
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
