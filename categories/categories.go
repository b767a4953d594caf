// Package categories maps keyword news categories to title-restricted search
// queries, either from a built-in table or from a SQLite store seeded with
// it.
package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Custom errors for category operations
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidCategory  = errors.New("category name and title_query are required")
)

// FallbackQuery is used for any category without its own query.
const FallbackQuery = `(finance OR investment OR economy OR market)`

// Builtin returns the default category queries. Each ORs keyword synonyms
// and requires at least one finance term.
func Builtin() map[string]string {
	return map[string]string{
		"stock market":   `(("stock market" OR equities OR shares OR dow OR nasdaq OR "s&p") AND (finance OR investment OR market))`,
		"cryptocurrency": `((bitcoin OR ethereum OR crypto OR altcoin OR blockchain OR cryptocurrency OR stablecoin) AND (price OR exchange OR market))`,
	}
}

// Resolver returns the title query for a category.
type Resolver interface {
	TitleQuery(ctx context.Context, category string) (string, error)
}

// Normalize lowercases and trims a category name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Static resolves categories from an in-memory map.
type Static map[string]string

// TitleQuery returns the mapped query or FallbackQuery.
func (s Static) TitleQuery(ctx context.Context, category string) (string, error) {
	if q, ok := s[Normalize(category)]; ok {
		return q, nil
	}
	return FallbackQuery, nil
}

// Category is a stored category query.
type Category struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	TitleQuery string    `json:"title_query"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Store manages category queries using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at dbPath and seeds the built-in
// categories without overwriting existing rows.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := store.seed(Builtin()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		title_query TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) seed(defaults map[string]string) error {
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	sort.Strings(names)

	now := formatTime(time.Now())
	for _, name := range names {
		_, err := s.db.Exec(`
			INSERT OR IGNORE INTO categories (id, name, title_query, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, uuid.New().String(), name, defaults[name], now, now)
		if err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns every category ordered by name.
func (s *Store) List() ([]Category, error) {
	rows, err := s.db.Query(`
		SELECT id, name, title_query, created_at, updated_at
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// Get retrieves a category by name.
func (s *Store) Get(name string) (*Category, error) {
	return s.get(context.Background(), Normalize(name))
}

func (s *Store) get(ctx context.Context, name string) (*Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, title_query, created_at, updated_at
		FROM categories
		WHERE name = ?
	`, name)

	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	return category, err
}

// Upsert creates the category or replaces its query.
func (s *Store) Upsert(name, titleQuery string) (*Category, error) {
	name = Normalize(name)
	titleQuery = strings.TrimSpace(titleQuery)
	if name == "" || titleQuery == "" {
		return nil, ErrInvalidCategory
	}

	now := formatTime(time.Now())
	_, err := s.db.Exec(`
		INSERT INTO categories (id, name, title_query, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			title_query = excluded.title_query,
			updated_at = excluded.updated_at
	`, uuid.New().String(), name, titleQuery, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert category: %w", err)
	}

	return s.Get(name)
}

// Delete removes a category by name.
func (s *Store) Delete(name string) error {
	result, err := s.db.Exec(`DELETE FROM categories WHERE name = ?`, Normalize(name))
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// TitleQuery returns the stored query for category, or FallbackQuery when
// it is unknown.
func (s *Store) TitleQuery(ctx context.Context, category string) (string, error) {
	found, err := s.get(ctx, Normalize(category))
	if errors.Is(err, ErrCategoryNotFound) {
		return FallbackQuery, nil
	}
	if err != nil {
		return "", err
	}
	return found.TitleQuery, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(row scanner) (*Category, error) {
	var idStr, name, query, createdAt, updatedAt string
	if err := row.Scan(&idStr, &name, &query, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid category id %q: %w", idStr, err)
	}

	return &Category{
		ID:         id,
		Name:       name,
		TitleQuery: query,
		CreatedAt:  parseTime(createdAt),
		UpdatedAt:  parseTime(updatedAt),
	}, nil
}

func formatTime(t time.Time) string {
	return t.Truncate(0).UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}
