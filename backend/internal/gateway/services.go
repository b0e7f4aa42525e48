package gateway

import (
	"context"
	"fmt"
	"log"

	"marklist/backend/internal/feedback"
	"marklist/backend/internal/shared"
	"marklist/backend/internal/store"
	"marklist/backend/internal/student"
)

// Services holds the backing store and the student service built on it.
// It is injected into the request handlers by SetupRoutes.
type Services struct {
	Students *student.Service
	Store    student.Store

	// Keep connections to close them later when the gateway shuts down
	closers []func() error
}

// NewServices connects to the configured store and builds the student service.
// The feedback client is only wired when an API key is configured.
func NewServices(ctx context.Context, cfg *shared.Config) (*Services, error) {
	s := &Services{}

	// 1. Connect the Store
	switch cfg.StoreDriver {
	case shared.StoreDriverMongo:
		client, db, err := shared.ConnectMongoDB(&cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() error { return shared.DisconnectMongoDB(client) })

		mongoStore := store.NewMongoStore(db, cfg.Subjects)
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		s.Store = mongoStore

	case shared.StoreDriverSQLite, shared.StoreDriverPostgres:
		db, err := store.OpenSQL(cfg.StoreDriver, cfg.SQL.DSN)
		if err != nil {
			return nil, err
		}
		sqlStore, err := store.NewSQLStore(db, cfg.Subjects)
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				sqlDB.Close()
			}
			return nil, err
		}
		s.closers = append(s.closers, sqlStore.Close)
		s.Store = sqlStore
		log.Printf("INFO: Using %s store", cfg.StoreDriver)

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	// 2. Feedback Client
	var requester student.Requester
	if cfg.Feedback.APIKey != "" {
		requester = feedback.NewClient(cfg.Feedback)
	} else {
		log.Println("WARN: GEMINI_API_KEY not set, feedback requests will fail")
	}

	// 3. Student Service
	s.Students = student.NewService(s.Store, requester, cfg.Subjects, cfg.QueryTimeout)
	return s, nil
}

// Close closes every underlying connection.
// Should be called via defer in main().
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Printf("WARN: Error closing store connection: %v", err)
		}
	}
}
