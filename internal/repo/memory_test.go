package repo_test

import (
	"context"
	"sync"
	"testing"

	"github.com/tazhibayda/identity-service/internal/domain"
	"github.com/tazhibayda/identity-service/internal/repo"
)

func TestMemoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	m := repo.NewMemory()

	id, err := m.Create(ctx, &domain.User{
		Name: "John", Email: "john@example.com",
		PasswordHash: "h", AuthType: domain.AuthLocal,
	})
	if err != nil {
		t.Fatal(err)
	}

	u, err := m.FindByEmail(ctx, "john@example.com")
	if err != nil || u == nil {
		t.Fatalf("find by email: %v %v", u, err)
	}
	if u.ID.Hex() != id {
		t.Fatalf("id mismatch: %s vs %s", u.ID.Hex(), id)
	}
	if u.CreatedAt.IsZero() {
		t.Fatal("created_at not set")
	}

	if u, _ := m.FindByID(ctx, id); u == nil {
		t.Fatal("find by id: not found")
	}
	if u, _ := m.FindByID(ctx, "no-such-id"); u != nil {
		t.Fatal("find by unknown id returned a record")
	}
	if u, _ := m.FindByExternalID(ctx, "fb-1"); u != nil {
		t.Fatal("find by absent external id returned a record")
	}
}

func TestMemoryDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	m := repo.NewMemory()
	if _, err := m.Create(ctx, &domain.User{Email: "a@x.com", AuthType: domain.AuthLocal}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Create(ctx, &domain.User{Email: "a@x.com", AuthType: domain.AuthExternal}); err != repo.ErrDuplicateEmail {
		t.Fatalf("want ErrDuplicateEmail, got %v", err)
	}
}

func TestMemoryConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	m := repo.NewMemory()

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Create(ctx, &domain.User{Email: "race@x.com", AuthType: domain.AuthLocal})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch err {
		case nil:
			ok++
		case repo.ErrDuplicateEmail:
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != 1 {
		t.Fatalf("want exactly one winner, got ok=%d dup=%d", ok, dup)
	}
}

func TestMemoryUpdate(t *testing.T) {
	ctx := context.Background()
	m := repo.NewMemory()
	id, err := m.Create(ctx, &domain.User{Email: "u@x.com", AuthType: domain.AuthLocal, PasswordHash: "h"})
	if err != nil {
		t.Fatal(err)
	}

	ext := "fb-42"
	typ := domain.AuthExternal
	empty := ""
	loggedIn := true
	if err := m.Update(ctx, id, repo.UserUpdate{
		ExternalID:   &ext,
		AuthType:     &typ,
		PasswordHash: &empty,
		IsLoggedIn:   &loggedIn,
	}); err != nil {
		t.Fatal(err)
	}

	u, _ := m.FindByExternalID(ctx, "fb-42")
	if u == nil {
		t.Fatal("not found by external id after update")
	}
	if u.AuthType != domain.AuthExternal || u.PasswordHash != "" || !u.IsLoggedIn {
		t.Fatalf("update not applied: %#v", u)
	}

	if err := m.Update(ctx, "missing", repo.UserUpdate{IsLoggedIn: &loggedIn}); err != repo.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestMemoryFindReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := repo.NewMemory()
	id, _ := m.Create(ctx, &domain.User{Email: "c@x.com", AuthType: domain.AuthLocal})

	u, _ := m.FindByID(ctx, id)
	u.Email = "mutated@x.com"

	again, _ := m.FindByID(ctx, id)
	if again.Email != "c@x.com" {
		t.Fatal("store leaked internal state to callers")
	}
}
