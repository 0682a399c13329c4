package request

import (
	"testing"

	"github.com/cobom/geoloc193/internal/models"
)

func TestAgentSeesOnlyOwnRecords(t *testing.T) {
	agent := Caller{ID: 7, Role: models.RoleAgent}

	if agent.SeesAll() {
		t.Fatalf("agent must not see all records")
	}
	if !agent.CanView(&Request{OwnerID: 7}) {
		t.Fatalf("agent should view an owned record")
	}
	if agent.CanView(&Request{OwnerID: 8}) {
		t.Fatalf("agent must not view another agent's record")
	}
	if agent.CanMutate(&Request{OwnerID: 8}) {
		t.Fatalf("agent must not mutate another agent's record")
	}
}

func TestSupervisorSeesAllButManagesNothing(t *testing.T) {
	sup := Caller{ID: 1, Role: models.RoleSupervisor}

	if !sup.SeesAll() || !sup.CanMutate(&Request{OwnerID: 99}) {
		t.Fatalf("supervisor should see and mutate any record")
	}
	if !sup.CanListUsers() {
		t.Fatalf("supervisor should have a read-only staff list")
	}
	if sup.CanManageUsers() {
		t.Fatalf("supervisor must not manage users")
	}
}

func TestAdministratorCannotDeleteSelf(t *testing.T) {
	admin := Caller{ID: 3, Role: models.RoleAdministrator}

	if !admin.CanManageUsers() {
		t.Fatalf("administrator should manage users")
	}
	if !admin.CanDeleteUser(4) {
		t.Fatalf("administrator should delete other users")
	}
	if admin.CanDeleteUser(3) {
		t.Fatalf("administrator must not delete their own account")
	}
}

func TestStatusRank(t *testing.T) {
	ranks := map[Status]int{
		StatusPending:   1,
		StatusReceived:  2,
		StatusFinalized: 3,
		Status("weird"): 4,
	}
	for s, want := range ranks {
		if got := StatusRank(s); got != want {
			t.Fatalf("StatusRank(%q) = %d, want %d", s, got, want)
		}
	}
}
