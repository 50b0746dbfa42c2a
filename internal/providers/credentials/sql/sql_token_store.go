package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/credentials"
	"github.com/crmarques/boxctl/faults"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var _ credentials.Store = (*TokenStore)(nil)

// TokenStore reads and claims the API token column of the first admin account
// in the BoxBilling database.
type TokenStore struct {
	db     *sql.DB
	owned  bool
	table  string
	column string
	role   string
}

func NewTokenStore(cfg config.SQLCredentialStore) (*TokenStore, error) {
	driver := strings.TrimSpace(cfg.Driver)
	if driver != config.SQLDriverMySQL && driver != config.SQLDriverSQLite {
		return nil, validationError(fmt.Sprintf("credentials.sql.driver %q is not supported", cfg.Driver), nil)
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, validationError("credentials.sql.dsn is required", nil)
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, faults.NewTypedError(faults.CredentialError, "failed to open credential database", err)
	}

	store, err := NewTokenStoreWithDB(db, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.owned = true
	return store, nil
}

// NewTokenStoreWithDB uses an existing handle; Close leaves it open.
func NewTokenStoreWithDB(db *sql.DB, cfg config.SQLCredentialStore) (*TokenStore, error) {
	if db == nil {
		return nil, validationError("credential database handle must not be nil", nil)
	}

	store := &TokenStore{
		db:     db,
		table:  valueOrDefault(cfg.Table, config.DefaultTokenTable),
		column: valueOrDefault(cfg.Column, config.DefaultTokenColumn),
		role:   valueOrDefault(cfg.Role, config.DefaultTokenRole),
	}
	for _, identifier := range []string{store.table, store.column} {
		if !identifierPattern.MatchString(identifier) {
			return nil, validationError(fmt.Sprintf("credentials.sql identifier %q is invalid", identifier), nil)
		}
	}
	return store, nil
}

func (s *TokenStore) Close() error {
	if s == nil || !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *TokenStore) Read(ctx context.Context) (string, bool, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE role = ? ORDER BY id LIMIT 1",
		s.column, s.table,
	)

	var token sql.NullString
	err := s.db.QueryRowContext(ctx, query, s.role).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, transportError("failed to query admin API token", err)
	}

	value := strings.TrimSpace(token.String)
	return value, token.Valid && value != "", nil
}

// Generate writes a fresh token only while the column is still empty, so a
// concurrent generator that got there first keeps its token.
func (s *TokenStore) Generate(ctx context.Context) error {
	logger := logr.FromContextOrDiscard(ctx)

	var id int64
	err := s.db.QueryRowContext(
		ctx,
		fmt.Sprintf("SELECT id FROM %s WHERE role = ? ORDER BY id LIMIT 1", s.table),
		s.role,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return faults.NewTypedError(
			faults.CredentialError,
			fmt.Sprintf("no account with role %q found in %s", s.role, s.table),
			nil,
		)
	}
	if err != nil {
		return transportError("failed to look up admin account", err)
	}

	token, err := credentials.NewToken()
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(
		ctx,
		fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ? AND (%s IS NULL OR %s = '')", s.table, s.column, s.column, s.column),
		token, id,
	)
	if err != nil {
		return transportError("failed to store admin API token", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		logger.V(1).Info("admin API token was claimed concurrently", "adminID", id)
	}
	return nil
}

func valueOrDefault(value string, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func transportError(message string, cause error) error {
	return faults.NewTypedError(faults.TransportError, message, cause)
}
