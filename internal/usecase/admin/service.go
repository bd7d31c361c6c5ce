package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"smart-locker/internal/domain/user"
	"smart-locker/internal/infrastructure/database/postgres"
	"smart-locker/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTableNotAllowed  = errors.New("table is not in the allow-list")
	ErrColumnNotAllowed = errors.New("column is not in the allow-list")
	ErrRowNotFound      = errors.New("row not found")
)

// Service is the administrative schema browser. Identifiers are
// validated against the allow-list before any statement is built;
// values travel as bound parameters.
type Service struct {
	db    *postgres.DB
	users user.Repository
}

func NewService(db *postgres.DB, users user.Repository) *Service {
	return &Service{db: db, users: users}
}

type TableData struct {
	Table   string                   `json:"table"`
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

func (s *Service) Tables() []string {
	tables := make([]string, 0, len(browsableColumns))
	for t := range browsableColumns {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	return tables
}

func (s *Service) Browse(ctx context.Context, table string) (*TableData, error) {
	if !tableAllowed(table) {
		return nil, ErrTableNotAllowed
	}

	columns := browsableColumns[table]
	var rows []map[string]interface{}
	err := s.db.DB.WithContext(ctx).
		Table(table).
		Select(columns).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to browse %s: %w", table, err)
	}

	return &TableData{Table: table, Columns: columns, Rows: rows}, nil
}

// UpdateCell writes one value into one allow-listed column of one row.
func (s *Service) UpdateCell(ctx context.Context, table, column, rowID string, value interface{}) error {
	if !tableAllowed(table) {
		return ErrTableNotAllowed
	}
	if !columnUpdatable(table, column) {
		return ErrColumnNotAllowed
	}

	result := s.db.DB.WithContext(ctx).
		Table(table).
		Where("id = ?", rowID).
		Update(column, value)

	if result.Error != nil {
		return fmt.Errorf("failed to update %s.%s: %w", table, column, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRowNotFound
	}

	logger.Info("Administrative cell update",
		zap.String("table", table),
		zap.String("column", column),
		zap.String("row_id", rowID),
	)

	return nil
}

// DeleteUser removes the account; lockers the user holds are released
// in the same transaction by the repository.
func (s *Service) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	logger.Info("Administrative user removal", zap.String("user_id", userID.String()))

	return nil
}
