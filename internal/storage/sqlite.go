package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/meur/stadiumforge/internal/models"
)

// Store mirrors the catalog into SQLite
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs database migrations
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			slug TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			hero_slug TEXT,
			cost INTEGER,
			rarity TEXT,
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_hero ON items(hero_slug)`,
		`CREATE TABLE IF NOT EXISTS heroes (
			id TEXT PRIMARY KEY,
			slug TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			role TEXT,
			data TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS manifests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			generated_at TEXT NOT NULL,
			item_count INTEGER NOT NULL,
			hero_count INTEGER NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// stableID derives a row id that survives rebuilds of the same slug
func stableID(kind, slug string) string {
	input := fmt.Sprintf("stadium:%s:%s", kind, slug)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(input)).String()
}

// --- Catalog ---

// ReplaceCatalog swaps the stored items and heroes for the given ones and
// records the manifest, all in one transaction.
func (s *Store) ReplaceCatalog(ctx context.Context, items []models.Item, heroes []models.Hero, m models.Manifest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM heroes`); err != nil {
		return err
	}
	if err := bulkInsertItems(ctx, tx, items); err != nil {
		return fmt.Errorf("failed to store items: %w", err)
	}
	if err := bulkInsertHeroes(ctx, tx, heroes); err != nil {
		return fmt.Errorf("failed to store heroes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO manifests (generated_at, item_count, hero_count) VALUES (?, ?, ?)
	`, m.GeneratedAt, m.Counts.Items, m.Counts.Heroes); err != nil {
		return fmt.Errorf("failed to store manifest: %w", err)
	}

	return tx.Commit()
}

func bulkInsertItems(ctx context.Context, tx *sql.Tx, items []models.Item) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO items (id, slug, name, hero_slug, cost, rarity, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		data, err := sonic.ConfigStd.Marshal(item)
		if err != nil {
			return err
		}
		var cost sql.NullInt64
		if item.Cost != nil {
			cost = sql.NullInt64{Int64: int64(*item.Cost), Valid: true}
		}
		_, err = stmt.ExecContext(ctx, stableID("item", item.Slug), item.Slug, item.Name,
			nullString(item.HeroSlug), cost, nullString(string(item.Rarity)), data)
		if err != nil {
			return err
		}
	}
	return nil
}

func bulkInsertHeroes(ctx context.Context, tx *sql.Tx, heroes []models.Hero) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO heroes (id, slug, name, role, data)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, hero := range heroes {
		data, err := sonic.ConfigStd.Marshal(hero)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx, stableID("hero", hero.Slug), hero.Slug, hero.Name,
			nullString(hero.Role), data)
		if err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// --- Items ---

// GetItems returns items ordered by slug, optionally only those of one hero
func (s *Store) GetItems(ctx context.Context, heroSlug string) ([]models.Item, error) {
	var rows *sql.Rows
	var err error

	if heroSlug != "" {
		rows, err = s.db.QueryContext(ctx, `SELECT data FROM items WHERE hero_slug = ? ORDER BY slug`, heroSlug)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT data FROM items ORDER BY slug`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var item models.Item
		if err := sonic.ConfigStd.UnmarshalFromString(data, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// --- Heroes ---

// GetHeroes returns all heroes ordered by slug
func (s *Store) GetHeroes(ctx context.Context) ([]models.Hero, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM heroes ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	heroes := []models.Hero{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var hero models.Hero
		if err := sonic.ConfigStd.UnmarshalFromString(data, &hero); err != nil {
			return nil, err
		}
		heroes = append(heroes, hero)
	}
	return heroes, rows.Err()
}

// --- Manifests ---

// LatestManifest returns the most recently stored manifest, or nil
func (s *Store) LatestManifest(ctx context.Context) (*models.Manifest, error) {
	var m models.Manifest
	err := s.db.QueryRowContext(ctx, `
		SELECT generated_at, item_count, hero_count FROM manifests ORDER BY id DESC LIMIT 1
	`).Scan(&m.GeneratedAt, &m.Counts.Items, &m.Counts.Heroes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
