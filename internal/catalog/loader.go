package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/meur/stadiumforge/internal/models"
	"github.com/meur/stadiumforge/internal/storage"
	"github.com/meur/stadiumforge/internal/storage/jsonfile"
	"github.com/meur/stadiumforge/internal/storage/redisstore"
)

//go:generate mockgen -destination=mock/mock_loader.go -package=catalogmock github.com/meur/stadiumforge/internal/catalog Loader

// Loader produces a fresh snapshot from some backing store
type Loader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// FileLoader reads the JSON files written by the merge step. Missing files
// load as empty.
type FileLoader struct {
	Dir string
}

// NewFileLoader creates a FileLoader for dir
func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{Dir: dir}
}

// Load implements Loader
func (l *FileLoader) Load(ctx context.Context) (*Snapshot, error) {
	var (
		items  []models.Item
		heroes []models.Hero
		m      models.Manifest
	)
	files := []struct {
		name string
		v    any
	}{
		{models.MetaFile, &m},
		{models.ItemsFile, &items},
		{models.HeroesFile, &heroes},
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := jsonfile.Read(filepath.Join(l.Dir, f.name), f.v); err != nil {
			return nil, err
		}
	}
	return NewSnapshot(items, heroes, m), nil
}

// RedisLoader reads a catalog published to Redis
type RedisLoader struct {
	pub *redisstore.Publisher
}

// NewRedisLoader creates a RedisLoader
func NewRedisLoader(pub *redisstore.Publisher) *RedisLoader {
	return &RedisLoader{pub: pub}
}

// Load implements Loader. An unpublished catalog loads as empty.
func (l *RedisLoader) Load(ctx context.Context) (*Snapshot, error) {
	items, heroes, m, err := l.pub.Fetch(ctx)
	if errors.Is(err, redisstore.ErrNotPublished) {
		return Empty(), nil
	}
	if err != nil {
		return nil, err
	}
	return NewSnapshot(items, heroes, m), nil
}

// StoreLoader reads the SQLite mirror
type StoreLoader struct {
	store *storage.Store
}

// NewStoreLoader creates a StoreLoader
func NewStoreLoader(store *storage.Store) *StoreLoader {
	return &StoreLoader{store: store}
}

// Load implements Loader
func (l *StoreLoader) Load(ctx context.Context) (*Snapshot, error) {
	items, err := l.store.GetItems(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	heroes, err := l.store.GetHeroes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load heroes: %w", err)
	}
	m, err := l.store.LatestManifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	if m == nil {
		m = &models.Manifest{}
	}
	return NewSnapshot(items, heroes, *m), nil
}
