package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/arkelhq/userapi/internal/userapi/service"
)

// seedBootstrapUser creates an initial ADMIN account when the user table is
// empty, so a fresh deployment has a principal that can manage users. It is
// idempotent: a non-empty store leaves everything untouched, and seeding is
// skipped entirely when no bootstrap password is configured.
func (app *Application) seedBootstrapUser(ctx context.Context) error {
	empty, err := app.db.Users().IsEmpty(ctx)
	if err != nil {
		return fmt.Errorf("check store: %w", err)
	}
	if !empty {
		return nil
	}

	if app.cfg.BootstrapPassword == "" {
		app.logger.Warn("user table is empty and no bootstrap password is set; skipping admin seed")
		return nil
	}

	user, err := app.userService.Create(ctx, service.NewUser{
		Name:     app.cfg.BootstrapName,
		Email:    app.cfg.BootstrapEmail,
		Password: app.cfg.BootstrapPassword,
		Roles:    "ADMIN,USER",
	})
	if err != nil {
		// A concurrent replica may have seeded first.
		if errors.Is(err, service.ErrEmailTaken) {
			app.logger.Info("bootstrap admin already exists", "email", app.cfg.BootstrapEmail)
			return nil
		}
		return err
	}

	app.logger.Info("bootstrap admin created", "id", user.ID, "email", user.Email)
	return nil
}
