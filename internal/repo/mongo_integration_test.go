package repo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/tazhibayda/identity-service/internal/domain"
	"github.com/tazhibayda/identity-service/internal/repo"
)

// Runs only against a real Mongo, e.g.
// MONGO_TEST_URI=mongodb://localhost:27017 go test ./internal/repo/...
func newMongoEnv(t *testing.T) *repo.Mongo {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := repo.NewMongo(ctx, uri, "identity_test")
	if err != nil {
		t.Fatalf("mongo connect: %v", err)
	}
	t.Cleanup(func() {
		_ = s.DB.Drop(context.Background())
		_ = s.Close(context.Background())
	})
	if err := s.EnsureUserIndexes(ctx); err != nil {
		t.Fatalf("indexes: %v", err)
	}
	return s
}

func TestMongoCreateFindUpdate(t *testing.T) {
	s := newMongoEnv(t)
	ctx := context.Background()

	id, err := s.Create(ctx, &domain.User{
		Name: "M", Email: "m@example.com",
		PasswordHash: "h", AuthType: domain.AuthLocal,
		SessionToken: "temp", IsLoggedIn: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Create(ctx, &domain.User{Email: "m@example.com", AuthType: domain.AuthLocal}); err != repo.ErrDuplicateEmail {
		t.Fatalf("want ErrDuplicateEmail, got %v", err)
	}

	u, err := s.FindByEmail(ctx, "m@example.com")
	if err != nil || u == nil || u.ID.Hex() != id {
		t.Fatalf("find by email: %#v %v", u, err)
	}

	ext := "fb-m"
	typ := domain.AuthExternal
	empty := ""
	if err := s.Update(ctx, id, repo.UserUpdate{ExternalID: &ext, AuthType: &typ, PasswordHash: &empty}); err != nil {
		t.Fatal(err)
	}
	u, err = s.FindByExternalID(ctx, "fb-m")
	if err != nil || u == nil || u.AuthType != domain.AuthExternal || u.PasswordHash != "" {
		t.Fatalf("after update: %#v %v", u, err)
	}

	loggedIn := false
	if err := s.Update(ctx, "ffffffffffffffffffffffff", repo.UserUpdate{IsLoggedIn: &loggedIn}); err != repo.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if u, err := s.FindByID(ctx, "not-a-hex-id"); err != nil || u != nil {
		t.Fatalf("malformed id should read as absent: %#v %v", u, err)
	}
}
