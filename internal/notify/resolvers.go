package notify

import (
	"context"
	"fmt"

	"go-workdesk/internal/store"
	"go-workdesk/internal/user"
)

// Event kinds with built-in routing rules.
const (
	KindLeaveSubmitted          = "leave-submitted"
	KindLeaveDecided            = "leave-decided"
	KindTaskAssigned            = "task-assigned"
	KindRegularizationRequested = "attendance-regularization-requested"
	KindRegularizationResolved  = "attendance-regularization-resolved"
	KindSupportTicketFiled      = "support-ticket-filed"
	KindSystemBroadcast         = "system-broadcast"
)

// byRoles resolves every user holding one of the given roles.
func byRoles(roles ...string) Resolver {
	return func(ctx context.Context, users *store.Table[user.User], ev Event) ([]string, error) {
		want := make(map[string]bool, len(roles))
		for _, r := range roles {
			want[r] = true
		}
		matched, err := users.Query(ctx, store.Query[user.User]{
			Match: func(u user.User) bool { return want[u.Role] },
		})
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(matched))
		for i, u := range matched {
			ids[i] = u.ID
		}
		return ids, nil
	}
}

// byDetail resolves the single recipient carried in the event payload.
func byDetail(key string) Resolver {
	return func(ctx context.Context, users *store.Table[user.User], ev Event) ([]string, error) {
		id := ev.Detail(key)
		if id == "" {
			return nil, fmt.Errorf("event detail %q missing", key)
		}
		return []string{id}, nil
	}
}

func everyone() Resolver {
	return func(ctx context.Context, users *store.Table[user.User], ev Event) ([]string, error) {
		all, err := users.All(ctx)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(all))
		for i, u := range all {
			ids[i] = u.ID
		}
		return ids, nil
	}
}

func registerDefaults(e *Engine) {
	e.Register(KindLeaveSubmitted, Rule{
		Type:     TypeLeave,
		Priority: PriorityMedium,
		Title:    func(ev Event) string { return "New leave request" },
		Message: func(ev Event) string {
			return fmt.Sprintf("%s applied for %s leave (%s)", ev.ActorName, ev.Detail("leaveType"), ev.EntityName)
		},
		Recipients: byRoles(user.ManagerialRoles()...),
	})

	e.Register(KindLeaveDecided, Rule{
		Type:     TypeLeave,
		Priority: PriorityHigh,
		Title:    func(ev Event) string { return fmt.Sprintf("Leave request %s", ev.Action) },
		Message: func(ev Event) string {
			return fmt.Sprintf("Your leave request %s was %s by %s", ev.EntityName, ev.Action, ev.ActorName)
		},
		Recipients: byDetail("employeeId"),
	})

	e.Register(KindTaskAssigned, Rule{
		Type:     TypeTask,
		Priority: PriorityMedium,
		Title:    func(ev Event) string { return "Task assigned to you" },
		Message: func(ev Event) string {
			return fmt.Sprintf("%s assigned you the task %q", ev.ActorName, ev.EntityName)
		},
		Recipients: byDetail("assignedTo"),
	})

	e.Register(KindRegularizationRequested, Rule{
		Type:     TypeAttendance,
		Priority: PriorityMedium,
		Title:    func(ev Event) string { return "Attendance regularization requested" },
		Message: func(ev Event) string {
			return fmt.Sprintf("%s requested regularization for %s", ev.ActorName, ev.Detail("date"))
		},
		Recipients: byRoles(user.ManagerialRoles()...),
	})

	e.Register(KindRegularizationResolved, Rule{
		Type:     TypeAttendance,
		Priority: PriorityMedium,
		Title:    func(ev Event) string { return fmt.Sprintf("Regularization %s", ev.Action) },
		Message: func(ev Event) string {
			return fmt.Sprintf("Your regularization for %s was %s by %s", ev.Detail("date"), ev.Action, ev.ActorName)
		},
		Recipients: byDetail("employeeId"),
	})

	e.Register(KindSupportTicketFiled, Rule{
		Type:     TypeSupport,
		Priority: PriorityHigh,
		Title:    func(ev Event) string { return "New support ticket" },
		Message: func(ev Event) string {
			return fmt.Sprintf("%s filed ticket %q", ev.ActorName, ev.EntityName)
		},
		Recipients: byRoles(user.RoleAdmin),
	})

	e.Register(KindSystemBroadcast, Rule{
		Type:       TypeSystem,
		Priority:   PriorityLow,
		Title:      func(ev Event) string { return ev.EntityName },
		Message:    func(ev Event) string { return ev.Detail("message") },
		Recipients: everyone(),
	})
}
