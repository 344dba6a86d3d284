package account_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"gymportal/internal/domain/account"
)

// TestAccount_Validate tests validation of Account.
func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		account account.Account
		wantErr error
	}{
		{
			name:    "valid admin account",
			account: account.Account{ID: "1", Email: "admin@gym.test", Name: "Ada", Role: account.RoleAdmin},
		},
		{
			name:    "valid trainer account",
			account: account.Account{ID: "2", Email: "trainer@gym.test", Name: "Tom", Role: account.RoleTrainer},
		},
		{
			name:    "valid member account",
			account: account.Account{ID: "3", Email: "member@gym.test", Name: "Mia", Role: account.RoleMember},
		},
		{
			name:    "empty email",
			account: account.Account{ID: "4", Name: "X", Role: account.RoleMember},
			wantErr: account.ErrEmptyEmail,
		},
		{
			name:    "email without at sign",
			account: account.Account{ID: "5", Email: "nobody", Name: "X", Role: account.RoleMember},
			wantErr: account.ErrInvalidEmail,
		},
		{
			name:    "email too long",
			account: account.Account{ID: "6", Email: strings.Repeat("a", 250) + "@x.io", Name: "X", Role: account.RoleMember},
			wantErr: account.ErrEmailTooLong,
		},
		{
			name:    "empty name",
			account: account.Account{ID: "7", Email: "a@b.c", Role: account.RoleMember},
			wantErr: account.ErrEmptyName,
		},
		{
			name:    "unknown role",
			account: account.Account{ID: "8", Email: "a@b.c", Name: "X", Role: "coach"},
			wantErr: account.ErrInvalidRole,
		},
		{
			name:    "no role",
			account: account.Account{ID: "9", Email: "a@b.c", Name: "X"},
			wantErr: account.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Account.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    account.Role
		wantErr bool
	}{
		{"admin", account.RoleAdmin, false},
		{" Trainer ", account.RoleTrainer, false},
		{"MEMBER", account.RoleMember, false},
		{"", account.RoleNone, true},
		{"coach", account.RoleNone, true},
	}
	for _, tt := range tests {
		got, err := account.ParseRole(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRole(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestAccount_Password tests hashing and verification.
func TestAccount_Password(t *testing.T) {
	var a account.Account
	if err := a.SetPassword(""); !errors.Is(err, account.ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
	if err := a.SetPassword("short"); !errors.Is(err, account.ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := a.CheckPassword("anything at all"); !errors.Is(err, account.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword with no hash, got %v", err)
	}
	if err := a.SetPassword("correct horse battery"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if a.PasswordHash == "" || a.PasswordHash == "correct horse battery" {
		t.Fatal("expected a bcrypt hash to be stored")
	}
	if err := a.CheckPassword("correct horse battery"); err != nil {
		t.Errorf("CheckPassword(correct) = %v", err)
	}
	if err := a.CheckPassword("wrong horse battery"); !errors.Is(err, account.ErrWrongPassword) {
		t.Errorf("CheckPassword(wrong) = %v", err)
	}
}

// TestAccount_Lockout tests the failed-login lockout policy.
func TestAccount_Lockout(t *testing.T) {
	now := time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)
	var a account.Account
	for i := 0; i < account.MaxFailedLogins-1; i++ {
		a.RecordFailedLogin(now)
	}
	if a.IsLocked(now) {
		t.Fatal("account should not be locked before the limit")
	}
	a.RecordFailedLogin(now)
	if !a.IsLocked(now) {
		t.Fatal("account should be locked at the limit")
	}
	if a.IsLocked(now.Add(account.LockoutDuration + time.Second)) {
		t.Error("lock should expire after LockoutDuration")
	}
	a.ResetFailedLogins()
	if a.FailedLogins != 0 || a.IsLocked(now) {
		t.Error("ResetFailedLogins should clear counter and lock")
	}
}
