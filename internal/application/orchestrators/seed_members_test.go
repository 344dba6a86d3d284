package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gymportal/internal/domain/member"
)

func TestExecuteSeedMembers(t *testing.T) {
	store := newMemMemberStore(activeMember("m-existing", "John Doe", "john@gym.test"))
	deps := SeedMembersDeps{MemberStore: store, GenerateID: sequentialIDs("m"), Now: nowFn}

	seeds := []MemberSeed{
		{Name: "John Doe", Email: "JOHN@gym.test", Phone: "555-0100", Plan: "basic"},
		{Name: "Jane Roe", Email: "jane@gym.test", Plan: "VIP"},
		{Name: "Old Timer", Email: "old@gym.test", Plan: "premium", Status: "inactive"},
	}
	res, err := ExecuteSeedMembers(context.Background(), seeds, deps)
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 2 || res.Unchanged != 1 || res.Updated != 0 {
		t.Errorf("result = %+v", res)
	}
	jane, err := store.GetByEmail(context.Background(), "jane@gym.test")
	if err != nil || jane.Plan != member.PlanVIP || jane.Status != member.StatusActive {
		t.Errorf("jane = %+v, %v", jane, err)
	}

	seeds[0].Plan = "premium"
	res, err = ExecuteSeedMembers(context.Background(), seeds, deps)
	if err != nil {
		t.Fatal(err)
	}
	if res.Updated != 1 || res.Created != 0 || res.Unchanged != 2 {
		t.Errorf("second result = %+v", res)
	}
	if john := store.byID["m-existing"]; john.Plan != member.PlanPremium || !john.JoinedAt.Equal(fixedNow) {
		t.Errorf("john = %+v", john)
	}
}

// TestExecuteSeedMembers_InvalidRowsWriteNothing checks all-or-nothing validation.
func TestExecuteSeedMembers_InvalidRowsWriteNothing(t *testing.T) {
	store := newMemMemberStore()
	deps := SeedMembersDeps{MemberStore: store, GenerateID: sequentialIDs("m"), Now: nowFn}

	_, err := ExecuteSeedMembers(context.Background(), []MemberSeed{
		{Name: "Good", Email: "good@gym.test", Plan: "basic"},
		{Name: "Bad Plan", Email: "bad@gym.test", Plan: "gold"},
		{Name: "Dup", Email: "GOOD@gym.test", Plan: "basic"},
	}, deps)
	if !errors.Is(err, member.ErrInvalidPlan) {
		t.Fatalf("err = %v, want ErrInvalidPlan", err)
	}
	if !strings.Contains(err.Error(), "duplicate of row 1") {
		t.Errorf("duplicate not reported: %v", err)
	}
	if store.saves != 0 {
		t.Errorf("saves = %d, want 0", store.saves)
	}
}
