package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go-workdesk/internal/app"
	"go-workdesk/internal/config"
	"go-workdesk/internal/leave"
	"go-workdesk/internal/task"
	"go-workdesk/internal/user"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, relying on environment variables")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := newRootCmd(logger).Execute(); err != nil {
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "workdesk",
		Short:         "Embedded reactive record store for the workdesk tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(logger), newSeedCmd(logger), newDemoCmd(logger))
	return root
}

// newMigrateCmd opens the store, which applies any pending schema versions,
// and reports the resulting version. Running it against an up-to-date file
// is a no-op.
func newMigrateCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema versions to the store file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			a, err := app.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			cmd.Printf("schema at version %d (%s)\n", a.Store.Registry().Latest(), cfg.DBPath)
			return nil
		},
	}
}

func newSeedCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create a starter set of users",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			a, err := app.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			created, err := seedUsers(cmd.Context(), a)
			if err != nil {
				return err
			}
			cmd.Printf("seeded %d users\n", created)
			return nil
		},
	}
}

// newDemoCmd runs an end-to-end scenario against a throwaway in-memory
// store: seed users, subscribe to pending leaves, apply and approve a leave,
// check attendance in and out, and print the notifications that fanned out.
func newDemoCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run an end-to-end scenario against an in-memory store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			cfg.DBPath = ":memory:"
			cfg.BackendURL = ""

			a, err := app.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			return runDemo(cmd, a)
		},
	}
}

func seedUsers(ctx context.Context, a *app.App) (int, error) {
	seeds := []user.CreateUserRequest{
		{ID: "u1", Name: "Asha Verma", Email: "asha@workdesk.local", Role: user.RoleAdmin},
		{ID: "u2", Name: "Rohit Sharma", Email: "rohit@workdesk.local", Role: user.RoleDeveloper},
		{ID: "u3", Name: "Meera Iyer", Email: "meera@workdesk.local", Role: user.RoleManager},
		{ID: "u4", Name: "Dev Patel", Email: "dev@workdesk.local", Role: user.RoleHR},
		{ID: "u5", Name: "Sana Khan", Email: "sana@workdesk.local", Role: user.RoleDesigner},
	}
	created := 0
	for _, req := range seeds {
		if _, err := a.Users.Create(ctx, req); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func runDemo(cmd *cobra.Command, a *app.App) error {
	ctx := cmd.Context()
	if _, err := seedUsers(ctx, a); err != nil {
		return err
	}

	employee := user.Actor{ID: "u2", Name: "Rohit Sharma", Role: user.RoleDeveloper}
	manager := user.Actor{ID: "u3", Name: "Meera Iyer", Role: user.RoleManager}

	sub, _, err := a.Store.Subscribe(ctx,
		func(ctx context.Context) (any, error) {
			return a.Leaves.ListPending(ctx)
		},
		func(result any) {
			pending := result.([]leave.LeaveRequest)
			cmd.Printf("  [live] %d pending leave request(s)\n", len(pending))
		},
	)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	lr, err := a.Leaves.Apply(ctx, employee, leave.ApplyLeaveRequest{
		LeaveType: "casual",
		StartDate: "2025-12-10",
		EndDate:   "2025-12-12",
		Reason:    "family event",
	})
	if err != nil {
		return err
	}
	cmd.Printf("leave %s applied: %d day(s), status %s\n", lr.ID, lr.Days, lr.Status)

	if lr, err = a.Leaves.Approve(ctx, manager, lr.ID); err != nil {
		return err
	}
	cmd.Printf("leave %s approved by %s\n", lr.ID, manager.Name)

	checkIn := time.Date(2025, 12, 15, 9, 16, 0, 0, time.UTC)
	rec, err := a.Attendance.CheckIn(ctx, employee, checkIn)
	if err != nil {
		return err
	}
	cmd.Printf("checked in %s at %s, status %s\n", rec.Date, rec.CheckIn, rec.Status)

	if rec, err = a.Attendance.CheckOut(ctx, employee, checkIn.Add(9*time.Hour)); err != nil {
		return err
	}
	cmd.Printf("checked out at %s, worked %.1f hour(s)\n", rec.CheckOut, rec.WorkHours)

	t, err := a.Tasks.Create(ctx, manager, task.CreateTaskRequest{
		Title:      "Prepare quarterly report",
		Priority:   task.PriorityHigh,
		AssignedTo: employee.ID,
		DueDate:    "2025-12-20",
	})
	if err != nil {
		return err
	}
	cmd.Printf("task %s assigned to %s\n", t.ID, t.AssignedTo)

	for _, id := range []string{employee.ID, manager.ID} {
		notes, err := a.Notifications.ListForUser(ctx, id, false)
		if err != nil {
			return err
		}
		cmd.Printf("notifications for %s:\n", id)
		for _, n := range notes {
			cmd.Printf("  [%s/%s] %s: %s\n", n.Type, n.Priority, n.Title, n.Message)
		}
	}

	return nil
}
