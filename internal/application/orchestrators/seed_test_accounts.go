package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gymportal/internal/domain/account"
	"gymportal/internal/domain/member"
)

// TestAccountSeedDeps holds stores needed for test account seeding.
type TestAccountSeedDeps struct {
	AccountStore testAcctAccountStore
	MemberStore  MemberStoreForSeed
	GenerateID   func() string
	Now          func() time.Time
}

type testAcctAccountStore interface {
	Save(ctx context.Context, a account.Account) error
	GetByEmail(ctx context.Context, email string) (account.Account, error)
}

// testAccountDef defines a single test account to seed.
type testAccountDef struct {
	Email    string
	Name     string
	Password string
	Role     account.Role
}

// testAccounts returns the list of test accounts to seed, one per role.
func testAccounts() []testAccountDef {
	return []testAccountDef{
		{Email: "admin@gymportal.test", Name: "Test Admin", Password: "gymportal+admin!", Role: account.RoleAdmin},
		{Email: "trainer@gymportal.test", Name: "Test Trainer", Password: "gymportal+trainer!", Role: account.RoleTrainer},
		{Email: "member@gymportal.test", Name: "Test Member", Password: "gymportal+member!", Role: account.RoleMember},
	}
}

// testMembers returns gym members a trainer can schedule against.
func testMembers() []MemberSeed {
	return []MemberSeed{
		{Name: "Test Member", Email: "member@gymportal.test", Phone: "555-0100", Plan: member.PlanBasic},
		{Name: "John Doe", Email: "john.doe@gymportal.test", Phone: "555-0101", Plan: member.PlanPremium},
		{Name: "Jane Roe", Email: "jane.roe@gymportal.test", Phone: "555-0102", Plan: member.PlanVIP},
	}
}

// ExecuteSeedTestAccounts creates a test account for each role and a few members.
// It is idempotent: accounts and members that already exist (by email) are skipped.
// PRE: Database is migrated, admin seed has run.
// POST: One account per role exists; the sample members exist.
func ExecuteSeedTestAccounts(ctx context.Context, deps TestAccountSeedDeps) error {
	created := 0
	for _, def := range testAccounts() {
		if _, err := deps.AccountStore.GetByEmail(ctx, def.Email); err == nil {
			continue
		}

		acct := account.Account{
			ID:        deps.GenerateID(),
			Email:     def.Email,
			Name:      def.Name,
			Role:      def.Role,
			CreatedAt: deps.Now(),
		}
		if err := acct.SetPassword(def.Password); err != nil {
			return fmt.Errorf("seed test account %s: set password: %w", def.Email, err)
		}
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return fmt.Errorf("seed test account %s: save: %w", def.Email, err)
		}
		created++
		slog.Info("seed_event", "event", "test_account_created", "email", def.Email, "role", def.Role)
	}

	res, err := ExecuteSeedMembers(ctx, testMembers(), SeedMembersDeps{
		MemberStore: deps.MemberStore,
		GenerateID:  deps.GenerateID,
		Now:         deps.Now,
	})
	if err != nil {
		return fmt.Errorf("seed test members: %w", err)
	}

	if created > 0 || res.Created > 0 {
		slog.Info("seed_event", "event", "test_accounts_seeded", "accounts", created, "members", res.Created)
	}
	return nil
}
