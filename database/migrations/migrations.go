package migrations

import "gorm.io/gorm"

type Step struct {
	Name string
	Run  func(db *gorm.DB) error
}

// Ordered lists the steps parents-first so foreign keys resolve.
func Ordered() []Step {
	return []Step{
		{Name: "users", Run: MigrateUsersTable},
		{Name: "templates", Run: MigrateTemplatesTable},
		{Name: "invitations", Run: MigrateInvitationsTable},
		{Name: "guest tables", Run: MigrateGuestTables},
		{Name: "payment tables", Run: MigratePaymentTables},
	}
}
