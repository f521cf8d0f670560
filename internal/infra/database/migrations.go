package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

type migration struct {
	Version int
	Name    string
	SQL     string
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Append-only: nunca editar uma migration já aplicada.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create_leads",
		SQL: `
CREATE TABLE IF NOT EXISTS leads (
	id            UUID PRIMARY KEY,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	name          TEXT NOT NULL,
	email         TEXT NOT NULL DEFAULT '',
	phone         TEXT NOT NULL DEFAULT '',
	whatsapp      TEXT NOT NULL DEFAULT '',
	company       TEXT NOT NULL DEFAULT '',
	business_type TEXT NOT NULL DEFAULT '',
	budget        TEXT NOT NULL DEFAULT '',
	project_type  TEXT NOT NULL DEFAULT '',
	message       TEXT NOT NULL DEFAULT '',
	visitor       JSONB NOT NULL DEFAULT '{}'::jsonb,
	source        TEXT NOT NULL,
	channel       TEXT NOT NULL DEFAULT 'form',
	tags          TEXT[] NOT NULL DEFAULT '{}',
	priority      TEXT NOT NULL DEFAULT 'normal',
	status        TEXT NOT NULL DEFAULT 'new',
	owner_id      TEXT NOT NULL DEFAULT '',
	notifications JSONB NOT NULL DEFAULT '{}'::jsonb,
	events        JSONB NOT NULL DEFAULT '[]'::jsonb
);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads (status);`,
	},
	{
		Version: 2,
		Name:    "create_notifications",
		SQL: `
CREATE TABLE IF NOT EXISTS notifications (
	id         UUID PRIMARY KEY,
	type       TEXT NOT NULL,
	direction  TEXT NOT NULL,
	recipients TEXT[] NOT NULL DEFAULT '{}',
	payload    JSONB NOT NULL DEFAULT '{}'::jsonb,
	lead_id    UUID REFERENCES leads(id) ON DELETE SET NULL,
	status     TEXT NOT NULL,
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_notifications_lead ON notifications (lead_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications (created_at DESC);`,
	},
	{
		Version: 3,
		Name:    "create_settings",
		SQL: `
CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
	},
}

// Migrate aplica as migrations pendentes, cada uma na sua transação.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaMigrationsTable); err != nil {
		return fmt.Errorf("erro ao criar schema_migrations: %w", err)
	}

	applied := map[int]bool{}
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("erro ao ler schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return err
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		log.Info().Int("version", m.Version).Str("name", m.Name).Msg("🗄️ Migration aplicada")
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
		return err
	}
	return tx.Commit()
}
