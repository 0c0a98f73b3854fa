package purchase

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
	pgUniqueCode = "23505"
)

// PostgresStore persists purchases across two tables. purchase_games
// carries a UNIQUE (user_id, game_id) constraint, so the ownership check
// is enforced by the database inside the insert transaction rather than
// only by the handler's read-then-write.
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

func (s *PostgresStore) Create(ctx context.Context, rec Record) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO purchases (id, user_id, total_amount, purchase_date)
			VALUES ($1, $2, $3, $4)
		`, rec.ID, rec.UserID, rec.TotalAmount, rec.PurchaseDate)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO purchase_games (purchase_id, user_id, game_id, name, price, image, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, g := range rec.Games {
			if _, err := stmt.ExecContext(ctx, rec.ID, rec.UserID, g.ID, g.Name, g.Price, g.Image, i); err != nil {
				if isUniqueViolation(err) {
					return ErrAlreadyOwned
				}
				return err
			}
		}

		return tx.Commit()
	})
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	var out []Record

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT p.id, p.user_id, p.total_amount, p.purchase_date,
			       g.game_id, g.name, g.price, g.image
			FROM purchases p
			JOIN purchase_games g ON g.purchase_id = p.id
			WHERE p.user_id = $1
			ORDER BY p.purchase_date ASC, p.id ASC, g.position ASC
		`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Record, 0, 8)
		for rows.Next() {
			var (
				rec Record
				g   GameSnapshot
			)
			if err := rows.Scan(&rec.ID, &rec.UserID, &rec.TotalAmount, &rec.PurchaseDate,
				&g.ID, &g.Name, &g.Price, &g.Image); err != nil {
				return err
			}

			if n := len(out); n > 0 && out[n-1].ID == rec.ID {
				out[n-1].Games = append(out[n-1].Games, g)
				continue
			}
			rec.Games = []GameSnapshot{g}
			out = append(out, rec)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode
}
