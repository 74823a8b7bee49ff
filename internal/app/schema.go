package app

import "go-workdesk/internal/store"

// SchemaVersions is the append-only migration chain. New releases append
// versions; existing entries never change, so any stored version can be
// upgraded by replaying the tail.
//
//	v1: core workdesk tables
//	v2: CRM and support tables
//	v3: billing tables, plus the unread-notification index
func SchemaVersions() []store.Version {
	return []store.Version{
		{
			Number: 1,
			Tables: []store.TableSpec{
				{Name: "users", Indexes: []string{"role", "email"}},
				{Name: "tasks", Indexes: []string{"status", "projectId", "teamId", "assignedTo", "dueDate"}},
				{Name: "projects", Indexes: []string{"status"}},
				{Name: "teams", Indexes: []string{"projectId", "leadId"}},
				{Name: "leave_requests", Indexes: []string{"employeeId", "status"}},
				{Name: "attendance_records", Indexes: []string{"employeeId", "date", "status"}},
				{Name: "notifications", Indexes: []string{"userId", "createdAt"}},
				{Name: "activity_logs", Indexes: []string{"userId", "entityType", "createdAt"}},
			},
		},
		{
			Number: 2,
			Tables: []store.TableSpec{
				{Name: "leads", Indexes: []string{"ownerId", "stage"}},
				{Name: "contacts", Indexes: []string{"ownerId", "companyId"}},
				{Name: "companies", Indexes: []string{"ownerId"}},
				{Name: "products", Indexes: []string{"sku"}},
				{Name: "quotations", Indexes: []string{"companyId", "status"}},
				{Name: "company_links", Indexes: []string{"userId", "companyId"}},
				{Name: "support_tickets", Indexes: []string{"userId", "status"}},
			},
		},
		{
			Number: 3,
			Tables: []store.TableSpec{
				{Name: "wallets", Indexes: []string{"userId"}},
				{Name: "wallet_transactions", Indexes: []string{"walletId", "createdAt"}},
				{Name: "subscription_plans", Indexes: []string{"active"}},
				{Name: "ai_usage_logs", Indexes: []string{"userId", "createdAt"}},
				{Name: "notifications", Indexes: []string{"isRead"}},
			},
		},
	}
}

// NewRegistry builds the schema registry for the current release.
func NewRegistry() (*store.Registry, error) {
	return store.NewRegistry(SchemaVersions()...)
}
