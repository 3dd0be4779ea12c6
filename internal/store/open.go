package store

import (
	"context"
	"fmt"
	"log"

	"cafesync/internal/config"
	"cafesync/internal/db"
)

// Open builds the backend named by cfg.StoreBackend. The returned func
// releases its connections.
func Open(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	if err := cfg.RequireStore(); err != nil {
		return nil, nil, err
	}

	switch cfg.StoreBackend {
	case config.BackendPostgREST:
		log.Printf("[Store] usando PostgREST em %s", cfg.SupabaseURL)
		return NewPostgREST(cfg.SupabaseURL, cfg.SupabaseKey), func() {}, nil

	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Println("[Store] usando Postgres direto")
		return &Postgres{DB: pool}, pool.Close, nil

	case config.BackendLocal:
		local, err := OpenLocal(cfg.LocalDBPath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[Store] usando SQLite local %s", cfg.LocalDBPath)
		return local, func() { _ = local.Close() }, nil

	case config.BackendMemory:
		log.Println("[Store] usando store em memória (dry run)")
		return NewMemory(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("backend desconhecido: %q", cfg.StoreBackend)
}
