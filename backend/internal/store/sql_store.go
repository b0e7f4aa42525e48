// ============================================================================
// backend/internal/store/sql_store.go
// GORM-backed student record store (sqlite for local runs, postgres)
// ============================================================================

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"marklist/backend/internal/shared"
)

// studentRow is the relational shape of a student record
type studentRow struct {
	ID             uint           `gorm:"primaryKey"`
	StudentName    string         `gorm:"not null"`
	RegisterNumber string         `gorm:"uniqueIndex;not null"`
	Marks          map[string]int `gorm:"serializer:json;type:text;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (studentRow) TableName() string { return "students" }

// SQLStore persists students through GORM
type SQLStore struct {
	db       *gorm.DB
	subjects []string
}

// OpenSQL opens a GORM connection for the sqlite or postgres driver.
// TranslateError lets unique violations surface as gorm.ErrDuplicatedKey.
func OpenSQL(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case shared.StoreDriverSQLite:
		dialector = sqlite.Open(dsn)
	case shared.StoreDriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return db, nil
}

// NewSQLStore creates a new SQLStore and migrates the students table
func NewSQLStore(db *gorm.DB, subjects []string) (*SQLStore, error) {
	if err := db.AutoMigrate(&studentRow{}); err != nil {
		return nil, &shared.StoreError{Op: "migrate", Err: err}
	}
	return &SQLStore{db: db, subjects: subjects}, nil
}

// Close releases the underlying connection pool
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// List returns every student without any ordering guarantee
func (s *SQLStore) List(ctx context.Context) ([]shared.Student, error) {
	var rows []studentRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, &shared.StoreError{Op: "list", Err: err}
	}

	students := make([]shared.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

// Insert stores a new student; a taken register number yields shared.ErrDuplicateKey
func (s *SQLStore) Insert(ctx context.Context, st shared.Student) (shared.Student, error) {
	marks := make(map[string]int, len(s.subjects))
	for _, subject := range s.subjects {
		marks[subject] = st.Marks[subject]
	}

	row := studentRow{
		StudentName:    st.StudentName,
		RegisterNumber: st.RegisterNumber,
		Marks:          marks,
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.Student{}, shared.ErrDuplicateKey
		}
		return shared.Student{}, &shared.StoreError{Op: "insert", Err: err}
	}
	return row.toStudent(), nil
}

// FindByID looks a student up by its decimal row id
func (s *SQLStore) FindByID(ctx context.Context, id string) (shared.Student, error) {
	pk, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return shared.Student{}, shared.ErrNotFound
	}

	var row studentRow
	if err := s.db.WithContext(ctx).First(&row, pk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.Student{}, shared.ErrNotFound
		}
		return shared.Student{}, &shared.StoreError{Op: "find", Err: err}
	}
	return row.toStudent(), nil
}

// Count returns the number of stored students
func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&studentRow{}).Count(&count).Error; err != nil {
		return 0, &shared.StoreError{Op: "count", Err: err}
	}
	return count, nil
}

func (r studentRow) toStudent() shared.Student {
	return shared.Student{
		ID:             strconv.FormatUint(uint64(r.ID), 10),
		StudentName:    r.StudentName,
		RegisterNumber: r.RegisterNumber,
		Marks:          r.Marks,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// isUniqueViolation also matches the raw sqlite message for drivers that
// do not translate constraint errors.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
