package postgres

import (
	"errors"
	"net/url"

	"github.com/aussiebroadwan/customers/internal/customers/store/drivers/postgres/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ApplyMigrations applies any pending migrations embedded in the binary. It
// opens its own connection through the golang-migrate pgx/v5 driver.
func (s *Store) ApplyMigrations() error {
	u, err := url.Parse(s.url)
	if err != nil {
		return err
	}
	u.Scheme = "pgx5"

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithSourceInstance("iofs", source, u.String())
	if err != nil {
		return err
	}
	defer func() {
		_, _ = instance.Close()
	}()

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
