package registry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"deskbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// fakeInstallStore is an in-memory domain.InstallationStore with an
// optional injected error and a read counter.
type fakeInstallStore struct {
	insts map[string]domain.Installation
	err   error
	gets  int
}

func newFakeInstallStore() *fakeInstallStore {
	return &fakeInstallStore{insts: make(map[string]domain.Installation)}
}

func (f *fakeInstallStore) Get(_ context.Context, teamID string) (*domain.Installation, error) {
	f.gets++
	if f.err != nil {
		return nil, f.err
	}
	inst, ok := f.insts[teamID]
	if !ok {
		return nil, nil
	}
	return &inst, nil
}

func (f *fakeInstallStore) Upsert(_ context.Context, inst domain.Installation) error {
	if f.err != nil {
		return f.err
	}
	f.insts[inst.TeamID] = inst
	return nil
}

func (f *fakeInstallStore) List(_ context.Context) ([]domain.Installation, error) {
	return nil, nil
}

func TestResolve_KnownTeam(t *testing.T) {
	store := newFakeInstallStore()
	store.insts["T1"] = domain.Installation{TeamID: "T1", BotToken: "xoxb-1"}
	r := New(Config{Store: store, Logger: testLogger()})

	inst, ok := r.Resolve(context.Background(), "T1")
	if !ok || inst.BotToken != "xoxb-1" {
		t.Errorf("got %+v ok=%v", inst, ok)
	}
}

func TestResolve_UnknownTeamIsNotFound(t *testing.T) {
	r := New(Config{Store: newFakeInstallStore(), Logger: testLogger()})
	if _, ok := r.Resolve(context.Background(), "T-missing"); ok {
		t.Error("unknown team should resolve to not-found")
	}
}

func TestResolve_EmptyTeamUsesDefault(t *testing.T) {
	r := New(Config{Store: newFakeInstallStore(), DefaultToken: "xoxb-default", Logger: testLogger()})

	inst, ok := r.Resolve(context.Background(), "")
	if !ok || inst.BotToken != "xoxb-default" {
		t.Errorf("got %+v ok=%v, want default credential", inst, ok)
	}
}

func TestResolve_EmptyTeamNoDefault(t *testing.T) {
	r := New(Config{Store: newFakeInstallStore(), Logger: testLogger()})
	if _, ok := r.Resolve(context.Background(), ""); ok {
		t.Error("no default configured, empty team should be not-found")
	}
}

func TestResolve_UnknownTeamDoesNotUseDefault(t *testing.T) {
	// A present-but-unregistered tenant must not borrow the default
	// credential; only absent tenant IDs fall back.
	r := New(Config{Store: newFakeInstallStore(), DefaultToken: "xoxb-default", Logger: testLogger()})
	if _, ok := r.Resolve(context.Background(), "T-other"); ok {
		t.Error("unregistered team must not resolve to the default credential")
	}
}

func TestResolve_CachesStoreReads(t *testing.T) {
	store := newFakeInstallStore()
	store.insts["T1"] = domain.Installation{TeamID: "T1", BotToken: "xoxb-1"}
	r := New(Config{Store: store, Logger: testLogger()})

	ctx := context.Background()
	r.Resolve(ctx, "T1")
	r.Resolve(ctx, "T1")
	if store.gets != 1 {
		t.Errorf("store read %d times, want 1 (cached)", store.gets)
	}
}

func TestResolve_StoreErrorIsNotFound(t *testing.T) {
	store := newFakeInstallStore()
	store.err = errors.New("disk on fire")
	r := New(Config{Store: store, Logger: testLogger()})

	if _, ok := r.Resolve(context.Background(), "T1"); ok {
		t.Error("store error should degrade to not-found, not panic or succeed")
	}
}

func TestUpsert_RefreshesCache(t *testing.T) {
	store := newFakeInstallStore()
	r := New(Config{Store: store, Logger: testLogger()})
	ctx := context.Background()

	if err := r.Upsert(ctx, domain.Installation{TeamID: "T1", BotToken: "xoxb-old"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Upsert(ctx, domain.Installation{TeamID: "T1", BotToken: "xoxb-new"}); err != nil {
		t.Fatal(err)
	}

	inst, ok := r.Resolve(ctx, "T1")
	if !ok || inst.BotToken != "xoxb-new" {
		t.Errorf("got %+v ok=%v, want rotated token from cache", inst, ok)
	}
	if store.gets != 0 {
		t.Errorf("store read %d times, want 0 (served from cache)", store.gets)
	}
}
