package revalidator

import "context"

// TagAdminDashboard keys the admin dashboard's cached view.
const TagAdminDashboard = "admin-dashboard"

// Revalidator drops cached views by tag. Fire-and-forget: implementations log
// their own failures.
type Revalidator interface {
	Revalidate(ctx context.Context, tag string)
}
