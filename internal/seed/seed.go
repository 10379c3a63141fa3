// Package seed bootstraps a fresh CRM database: an admin account and a
// starter product catalog. Every step is idempotent so the seeder can run on
// each deploy.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/database"
)

// Product is one catalog entry. Price is in cents.
type Product struct {
	Name        string
	Price       int64
	Category    string
	Description string
	Tags        []string
}

// Catalog is the starter product list.
var Catalog = []Product{
	{Name: "Ball", Price: 1999, Category: domain.CategoryOutdoor, Description: "Size 5 football.", Tags: []string{"Sports"}},
	{Name: "BBQ Grill", Price: 20000, Category: domain.CategoryOutdoor, Description: "Charcoal kettle grill.", Tags: []string{"Kitchen", "Summer"}},
	{Name: "Table", Price: 5000, Category: domain.CategoryIndoor, Description: "Oak dining table.", Tags: []string{"Kitchen"}},
	{Name: "Lamp", Price: 2500, Category: domain.CategoryIndoor},
	{Name: "Garden Chair", Price: 4500, Category: domain.CategoryOutdoor, Tags: []string{"Summer"}},
}

// Seeder writes bootstrap data.
type Seeder struct {
	db       database.DBTX
	logger   *slog.Logger
	hashCost int
}

func New(db database.DBTX, logger *slog.Logger) *Seeder {
	return &Seeder{db: db, logger: logger, hashCost: 12}
}

// Admin creates the admin account, or adds an existing user with that
// username to the admin group. An existing password is left untouched.
func (s *Seeder) Admin(ctx context.Context, username, email, password string) (id int64, created bool, err error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return 0, false, fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	err = tx.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (username) DO NOTHING
		RETURNING id`,
		username, email, string(hash),
	).Scan(&id)
	switch {
	case err == nil:
		created = true
	case errors.Is(err, pgx.ErrNoRows):
		if err = tx.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&id); err != nil {
			return 0, false, fmt.Errorf("lookup user %q: %w", username, err)
		}
	default:
		return 0, false, fmt.Errorf("insert user: %w", err)
	}

	ct, err := tx.Exec(ctx, `
		INSERT INTO user_groups (user_id, group_id)
		SELECT $1, id FROM groups WHERE name = $2
		ON CONFLICT DO NOTHING`,
		id, domain.RoleAdmin,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert user group: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "admin account seeded",
		slog.Int64("user_id", id),
		slog.String("username", username),
		slog.Bool("created", created),
		slog.Bool("group_added", ct.RowsAffected() > 0),
	)
	return id, created, nil
}

// Products inserts every product whose name is not taken yet, with its
// tags, in a single transaction. It returns how many were inserted.
func (s *Seeder) Products(ctx context.Context, products []Product) (int, error) {
	for _, p := range products {
		if !slices.Contains(domain.ValidCategories(), p.Category) {
			return 0, fmt.Errorf("product %q: unknown category %q", p.Name, p.Category)
		}
		if p.Price < 0 {
			return 0, fmt.Errorf("product %q: negative price", p.Name)
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	inserted := 0
	for _, p := range products {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO products (name, price, category, description)
			SELECT $1, $2, $3, $4
			WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1)
			RETURNING id`,
			p.Name, p.Price, p.Category, p.Description,
		).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.DebugContext(ctx, "product already present", slog.String("name", p.Name))
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("insert product %q: %w", p.Name, err)
		}

		for _, tag := range p.Tags {
			if err := tagProduct(ctx, tx, id, tag); err != nil {
				return 0, fmt.Errorf("tag product %q: %w", p.Name, err)
			}
		}
		inserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "products seeded",
		slog.Int("inserted", inserted),
		slog.Int("skipped", len(products)-inserted),
	)
	return inserted, nil
}

func tagProduct(ctx context.Context, tx pgx.Tx, productID int64, tag string) error {
	var tagID int64
	err := tx.QueryRow(ctx, `
		INSERT INTO tags (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		tag,
	).Scan(&tagID)
	if err != nil {
		return fmt.Errorf("upsert tag %q: %w", tag, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO product_tags (product_id, tag_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		productID, tagID,
	)
	return err
}
