package catalog

import (
	"context"
	"database/sql"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
	seedTimeout  = 10 * time.Second
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) ListSortedByID(ctx context.Context) ([]Game, error) {
	var out []Game

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, name, price, image, description, genre, platform, release_date
			FROM games
			ORDER BY id ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Game, 0, 64)
		for rows.Next() {
			var g Game
			if err := rows.Scan(&g.ID, &g.Name, &g.Price, &g.Image,
				&g.Description, &g.Genre, &g.Platform, &g.ReleaseDate); err != nil {
				return err
			}
			out = append(out, g)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Game, bool, error) {
	var g Game

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT id, name, price, image, description, genre, platform, release_date
			FROM games
			WHERE id = $1
		`, id).Scan(&g.ID, &g.Name, &g.Price, &g.Image,
			&g.Description, &g.Genre, &g.Platform, &g.ReleaseDate)
	})

	if err == sql.ErrNoRows {
		return Game{}, false, nil
	}
	if err != nil {
		return Game{}, false, err
	}
	return g, true, nil
}

func (s *PostgresStore) ReplaceAll(ctx context.Context, games []Game) error {
	return withTimeout(ctx, seedTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM games`); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO games (id, name, price, image, description, genre, platform, release_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, g := range games {
			if _, err := stmt.ExecContext(ctx, g.ID, g.Name, g.Price, g.Image,
				g.Description, g.Genre, g.Platform, g.ReleaseDate); err != nil {
				return err
			}
		}

		return tx.Commit()
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
