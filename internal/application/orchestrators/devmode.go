package orchestrators

import (
	"errors"

	"gymportal/internal/domain/account"
)

// DevMode errors
var (
	ErrDevModeNotAdmin         = errors.New("only admins can use devmode impersonation")
	ErrDevModeInvalidRole      = errors.New("target role is not valid")
	ErrDevModeNotImpersonating = errors.New("not currently impersonating")
)

// Identity is the account an auth session acts as.
type Identity struct {
	AccountID string
	Email     string
	Name      string
	Role      account.Role
}

// DevModeImpersonateInput carries input for the impersonate orchestrator.
type DevModeImpersonateInput struct {
	TargetRole string
	Current    Identity
	Real       Identity // zero unless already impersonating
}

// DevModeImpersonateResult carries the updated session fields.
type DevModeImpersonateResult struct {
	Role account.Role
	Real Identity // zero when the admin is back to their own role
}

// ExecuteDevModeImpersonate validates the impersonation request and returns updated session fields.
// PRE: Caller must be a real admin (either directly or via Real if already impersonating).
// POST: Returns the target role and the preserved admin identity.
func ExecuteDevModeImpersonate(input DevModeImpersonateInput) (DevModeImpersonateResult, error) {
	admin := input.Current
	if input.Real.Role != account.RoleNone {
		admin = input.Real
	}
	if admin.Role != account.RoleAdmin {
		return DevModeImpersonateResult{}, ErrDevModeNotAdmin
	}

	target, err := account.ParseRole(input.TargetRole)
	if err != nil {
		return DevModeImpersonateResult{}, ErrDevModeInvalidRole
	}

	if target == account.RoleAdmin {
		return DevModeImpersonateResult{Role: account.RoleAdmin}, nil
	}
	return DevModeImpersonateResult{Role: target, Real: admin}, nil
}

// ExecuteDevModeRestore validates the restore request and returns the original admin identity.
// PRE: Caller must be currently impersonating with a real admin identity.
// POST: Returns the admin identity; impersonation fields should be cleared.
func ExecuteDevModeRestore(stashed Identity) (Identity, error) {
	if stashed.Role == account.RoleNone {
		return Identity{}, ErrDevModeNotImpersonating
	}
	if stashed.Role != account.RoleAdmin {
		return Identity{}, ErrDevModeNotAdmin
	}
	return stashed, nil
}
