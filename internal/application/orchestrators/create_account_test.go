package orchestrators

import (
	"context"
	"errors"
	"testing"

	"gymportal/internal/domain/account"
)

func createDeps(store *memAccountStore) CreateAccountDeps {
	return CreateAccountDeps{AccountStore: store, GenerateID: sequentialIDs("acct"), Now: nowFn}
}

func TestExecuteCreateAccount(t *testing.T) {
	store := newMemAccountStore()
	deps := createDeps(store)
	ctx := context.Background()

	acct, err := ExecuteCreateAccount(ctx, CreateAccountInput{Email: " tess@gym.test ", Name: "Tess", Password: "long-enough-pass", Role: account.RoleTrainer}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if acct.ID != "acct-1" || acct.Email != "tess@gym.test" || !acct.CreatedAt.Equal(fixedNow) {
		t.Errorf("account = %+v", acct)
	}
	if err := acct.CheckPassword("long-enough-pass"); err != nil {
		t.Error("password not hashed correctly")
	}

	tests := []struct {
		name  string
		input CreateAccountInput
		want  error
	}{
		{"duplicate email", CreateAccountInput{Email: "TESS@gym.test", Name: "T2", Password: "long-enough-pass", Role: account.RoleMember}, ErrEmailAlreadyExists},
		{"short password", CreateAccountInput{Email: "a@gym.test", Name: "A", Password: "short", Role: account.RoleMember}, account.ErrPasswordTooShort},
		{"bad role", CreateAccountInput{Email: "b@gym.test", Name: "B", Password: "long-enough-pass", Role: "coach"}, account.ErrInvalidRole},
		{"no name", CreateAccountInput{Email: "c@gym.test", Password: "long-enough-pass", Role: account.RoleMember}, account.ErrEmptyName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExecuteCreateAccount(ctx, tt.input, deps); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if len(store.accounts) != 1 {
		t.Errorf("stored %d accounts, want 1", len(store.accounts))
	}
}

func TestExecuteSeedAdmin(t *testing.T) {
	store := newMemAccountStore()
	deps := createDeps(store)
	ctx := context.Background()

	if err := ExecuteSeedAdmin(ctx, deps, "admin@gym.test", "admin-password-1"); err != nil {
		t.Fatal(err)
	}
	if a, ok := store.accounts["admin@gym.test"]; !ok || a.Role != account.RoleAdmin {
		t.Fatalf("admin not seeded: %+v", store.accounts)
	}
	// Second run with accounts present does nothing.
	if err := ExecuteSeedAdmin(ctx, deps, "other@gym.test", "admin-password-1"); err != nil {
		t.Fatal(err)
	}
	if len(store.accounts) != 1 {
		t.Errorf("seed not idempotent: %d accounts", len(store.accounts))
	}
}
