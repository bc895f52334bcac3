package app

import (
	"context"
	"database/sql"
	"fmt"

	"crewtrack/internal/config"
	"crewtrack/internal/db"
	"crewtrack/internal/migrate"
	"crewtrack/internal/repo"
)

// Bootstrap opens (creating if needed) the workspace database, applies
// migrations, loads crewtrack.yml (built-in defaults when absent), and seeds
// the task catalog into an empty table.
func Bootstrap(ctx context.Context, workspace string) (*sql.DB, *config.Config, error) {
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if err := seedTasks(ctx, conn, cfg); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("seed tasks: %w", err)
	}
	return conn, cfg, nil
}

// seedTasks loads the configured catalog once; a non-empty table is left
// alone.
func seedTasks(ctx context.Context, conn *sql.DB, cfg *config.Config) error {
	r := repo.Repo{DB: conn}
	n, err := r.CountTasks(ctx)
	if err != nil {
		return err
	}
	if n > 0 || len(cfg.Seed.Tasks) == 0 {
		return nil
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, t := range cfg.Seed.Tasks {
		if _, err := tx.ExecContext(ctx, `INSERT INTO tasks(name,points,category) VALUES (?,?,?)`,
			t.Name, t.Points, t.Category); err != nil {
			return err
		}
	}
	return tx.Commit()
}
