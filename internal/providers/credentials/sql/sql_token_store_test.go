package sql

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/credentials"
	"github.com/crmarques/boxctl/faults"
)

func newTestDatabase(t *testing.T, statements ...string) *sql.DB {
	t.Helper()

	db, err := sql.Open(config.SQLDriverSQLite, filepath.Join(t.TempDir(), "boxbilling.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	schema := `CREATE TABLE admin (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		role TEXT NOT NULL,
		email TEXT,
		api_token TEXT
	)`
	for _, statement := range append([]string{schema}, statements...) {
		if _, err := db.Exec(statement); err != nil {
			t.Fatalf("failed to execute %q: %v", statement, err)
		}
	}
	return db
}

func TestTokenStoreReadsFirstAdmin(t *testing.T) {
	t.Parallel()

	db := newTestDatabase(t,
		`INSERT INTO admin (role, email, api_token) VALUES ('staff', 'staff@example.com', 'staff-token')`,
		`INSERT INTO admin (role, email, api_token) VALUES ('admin', 'first@example.com', 'first-token')`,
		`INSERT INTO admin (role, email, api_token) VALUES ('admin', 'second@example.com', 'second-token')`,
	)
	store, err := NewTokenStoreWithDB(db, config.SQLCredentialStore{})
	if err != nil {
		t.Fatalf("NewTokenStoreWithDB returned error: %v", err)
	}

	token, ok, err := store.Read(context.Background())
	if err != nil || !ok || token != "first-token" {
		t.Fatalf("expected first-token, got %q ok=%t err=%v", token, ok, err)
	}
}

func TestTokenStoreGeneratesMissingToken(t *testing.T) {
	t.Parallel()

	db := newTestDatabase(t, `INSERT INTO admin (role, email, api_token) VALUES ('admin', 'a@example.com', NULL)`)
	store, err := NewTokenStoreWithDB(db, config.SQLCredentialStore{})
	if err != nil {
		t.Fatalf("NewTokenStoreWithDB returned error: %v", err)
	}

	if _, ok, err := store.Read(context.Background()); err != nil || ok {
		t.Fatalf("NULL token must read as absent, ok=%t err=%v", ok, err)
	}

	token, err := credentials.NewTokenProvider(store).Token(context.Background())
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if len(token) != credentials.TokenLength {
		t.Fatalf("unexpected token %q", token)
	}

	var stored string
	if err := db.QueryRow(`SELECT api_token FROM admin WHERE id = 1`).Scan(&stored); err != nil {
		t.Fatalf("failed to read stored token: %v", err)
	}
	if stored != token {
		t.Fatalf("expected stored token %q, got %q", token, stored)
	}
}

func TestTokenStoreGenerateKeepsExistingToken(t *testing.T) {
	t.Parallel()

	db := newTestDatabase(t, `INSERT INTO admin (role, email, api_token) VALUES ('admin', 'a@example.com', 'kept')`)
	store, err := NewTokenStoreWithDB(db, config.SQLCredentialStore{})
	if err != nil {
		t.Fatalf("NewTokenStoreWithDB returned error: %v", err)
	}

	if err := store.Generate(context.Background()); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	token, _, err := store.Read(context.Background())
	if err != nil || token != "kept" {
		t.Fatalf("existing token must not be replaced, got %q err=%v", token, err)
	}
}

func TestTokenStoreConcurrentProviders(t *testing.T) {
	t.Parallel()

	db := newTestDatabase(t, `INSERT INTO admin (role, email, api_token) VALUES ('admin', 'a@example.com', '')`)
	db.SetMaxOpenConns(1)

	tokens := make([]string, 4)
	var wg sync.WaitGroup
	for idx := range tokens {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store, err := NewTokenStoreWithDB(db, config.SQLCredentialStore{})
			if err != nil {
				t.Errorf("NewTokenStoreWithDB returned error: %v", err)
				return
			}
			token, err := credentials.NewTokenProvider(store).Token(context.Background())
			if err != nil {
				t.Errorf("Token returned error: %v", err)
				return
			}
			tokens[idx] = token
		}()
	}
	wg.Wait()

	for _, token := range tokens[1:] {
		if token != tokens[0] {
			t.Fatalf("independent providers observed different tokens: %v", tokens)
		}
	}
}

func TestTokenStoreWithoutAdminAccount(t *testing.T) {
	t.Parallel()

	db := newTestDatabase(t)
	store, err := NewTokenStoreWithDB(db, config.SQLCredentialStore{})
	if err != nil {
		t.Fatalf("NewTokenStoreWithDB returned error: %v", err)
	}

	_, err = credentials.NewTokenProvider(store).Token(context.Background())
	if !faults.IsCategory(err, faults.CredentialError) {
		t.Fatalf("expected credential error, got %v", err)
	}
}

func TestTokenStoreRejectsUnsafeIdentifiers(t *testing.T) {
	t.Parallel()

	db := newTestDatabase(t)
	_, err := NewTokenStoreWithDB(db, config.SQLCredentialStore{Table: "admin; DROP TABLE admin"})
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = NewTokenStore(config.SQLCredentialStore{Driver: "postgres", DSN: "x"})
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error for driver, got %v", err)
	}
}
