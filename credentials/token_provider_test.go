package credentials

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/crmarques/boxctl/faults"
)

type fakeStore struct {
	mu        sync.Mutex
	token     string
	generated atomic.Int32
	// noop makes Generate succeed without storing anything.
	noop    bool
	readErr error
}

func (s *fakeStore) Read(context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return "", false, s.readErr
	}
	return s.token, s.token != "", nil
}

func (s *fakeStore) Generate(context.Context) error {
	s.generated.Add(1)
	if s.noop {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		s.token = "generated-token"
	}
	return nil
}

func TestTokenProviderReturnsExistingToken(t *testing.T) {
	t.Parallel()

	store := &fakeStore{token: "existing"}
	token, err := NewTokenProvider(store).Token(context.Background())
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if token != "existing" {
		t.Fatalf("expected existing, got %q", token)
	}
	if store.generated.Load() != 0 {
		t.Fatal("generate must not run when a token exists")
	}
}

func TestTokenProviderGeneratesOnce(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	provider := NewTokenProvider(store)

	token, err := provider.Token(context.Background())
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if token != "generated-token" {
		t.Fatalf("expected generated-token, got %q", token)
	}

	if _, err := provider.Token(context.Background()); err != nil {
		t.Fatalf("second Token returned error: %v", err)
	}
	if got := store.generated.Load(); got != 1 {
		t.Fatalf("expected exactly one generation, got %d", got)
	}
}

func TestTokenProviderConcurrentLookups(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	provider := NewTokenProvider(store)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := provider.Token(context.Background()); err != nil {
				t.Errorf("Token returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := store.generated.Load(); got != 1 {
		t.Fatalf("expected exactly one generation, got %d", got)
	}
}

func TestTokenProviderStillAbsentAfterGenerate(t *testing.T) {
	t.Parallel()

	store := &fakeStore{noop: true}
	_, err := NewTokenProvider(store).Token(context.Background())
	if !faults.IsCategory(err, faults.CredentialError) {
		t.Fatalf("expected credential error, got %v", err)
	}
	if got := store.generated.Load(); got != 1 {
		t.Fatalf("generate must run exactly once, got %d", got)
	}
}

func TestTokenProviderWrapsReadErrors(t *testing.T) {
	t.Parallel()

	readErr := errors.New("connection refused")
	_, err := NewTokenProvider(&fakeStore{readErr: readErr}).Token(context.Background())
	if !faults.IsCategory(err, faults.CredentialError) || !errors.Is(err, readErr) {
		t.Fatalf("expected wrapped credential error, got %v", err)
	}
}

func TestNewToken(t *testing.T) {
	t.Parallel()

	first, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken returned error: %v", err)
	}
	second, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken returned error: %v", err)
	}
	if len(first) != TokenLength || first == second {
		t.Fatalf("unexpected tokens %q %q", first, second)
	}
	if strings.Trim(first, tokenAlphabet) != "" {
		t.Fatalf("token contains characters outside the alphabet: %q", first)
	}
}

type blockingStore struct {
	entered   chan struct{}
	release   chan struct{}
	enterOnce sync.Once
	canceled  atomic.Bool
}

func (s *blockingStore) Read(ctx context.Context) (string, bool, error) {
	s.enterOnce.Do(func() { close(s.entered) })
	select {
	case <-s.release:
		return "shared-token", true, nil
	case <-ctx.Done():
		s.canceled.Store(true)
		return "", false, ctx.Err()
	}
}

func (s *blockingStore) Generate(context.Context) error {
	return nil
}

func TestTokenProviderCallerCancellationIsLocal(t *testing.T) {
	t.Parallel()

	store := &blockingStore{entered: make(chan struct{}), release: make(chan struct{})}
	provider := NewTokenProvider(store)

	ctx, cancel := context.WithCancel(context.Background())
	canceledErr := make(chan error, 1)
	go func() {
		_, err := provider.Token(ctx)
		canceledErr <- err
	}()

	<-store.entered
	cancel()
	if err := <-canceledErr; !errors.Is(err, context.Canceled) || !faults.IsCategory(err, faults.CredentialError) {
		t.Fatalf("expected canceled credential error, got %v", err)
	}

	type outcome struct {
		token string
		err   error
	}
	other := make(chan outcome, 1)
	go func() {
		token, err := provider.Token(context.Background())
		other <- outcome{token: token, err: err}
	}()
	close(store.release)

	got := <-other
	if got.err != nil || got.token != "shared-token" {
		t.Fatalf("other callers must not inherit the cancellation, got %q err=%v", got.token, got.err)
	}
	if store.canceled.Load() {
		t.Fatal("the shared lookup must not observe a caller's cancellation")
	}
}

func TestTokenProviderRejectsCanceledContext(t *testing.T) {
	t.Parallel()

	store := &fakeStore{token: "existing"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewTokenProvider(store).Token(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
