package membership

import (
	"errors"
	"fmt"
	"testing"

	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/models"
)

func TestMembersByRoleFiltersByOrganizationAndRole(t *testing.T) {
	db := setupTestDB(t)
	store := NewDB(db)
	carol := createTestUser(t, db, "Carol", "carol@example.com")
	dan := createTestUser(t, db, "Dan", "dan@example.com")
	org1 := createTestOrg(t, db, "Org One")
	org2 := createTestOrg(t, db, "Org Two")

	// Carol manages org1 and assists in org2; Dan assists in org1
	store.Attach(org1.ID, []Pair{
		{UserID: carol.ID, Role: models.RoleManager},
		{UserID: dan.ID, Role: models.RoleSocialAssistant},
	})
	store.Attach(org2.ID, []Pair{{UserID: carol.ID, Role: models.RoleSocialAssistant}})

	result, err := store.MembersByRole(org1.ID, models.RoleManager, Page{})
	if err != nil {
		t.Fatalf("MembersByRole failed: %v", err)
	}
	if result.TotalCount != 1 || len(result.Items) != 1 {
		t.Fatalf("Expected exactly Carol, got %d items", len(result.Items))
	}
	if result.Items[0].ID != carol.ID {
		t.Errorf("Expected Carol (%d), got %d", carol.ID, result.Items[0].ID)
	}

	// Carol's manager role in org1 must not leak into org2
	result, err = store.MembersByRole(org2.ID, models.RoleManager, Page{})
	if err != nil {
		t.Fatalf("MembersByRole failed: %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("Org2 has no managers, got %d items", len(result.Items))
	}
}

func TestMembersByRoleUnknownOrganization(t *testing.T) {
	db := setupTestDB(t)
	store := NewDB(db)

	_, err := store.MembersByRole(9999, models.RoleManager, Page{})
	if !errors.Is(err, ErrUnknownOrganization) {
		t.Errorf("Expected ErrUnknownOrganization, got %v", err)
	}
}

func TestMembersByRoleSoftDeletedOrganization(t *testing.T) {
	db := setupTestDB(t)
	store := NewDB(db)
	user := createTestUser(t, db, "Carol", "carol@example.com")
	org := createTestOrg(t, db, "Org")
	store.Attach(org.ID, []Pair{{UserID: user.ID, Role: models.RoleManager}})

	if err := db.Delete(&org).Error; err != nil {
		t.Fatalf("Failed to soft-delete organization: %v", err)
	}

	_, err := store.MembersByRole(org.ID, models.RoleManager, Page{})
	if !errors.Is(err, ErrUnknownOrganization) {
		t.Errorf("Soft-deleted organization should be invisible, got %v", err)
	}
}

func TestEligibleUsersExcludesRoleHolders(t *testing.T) {
	db := setupTestDB(t)
	store := NewDB(db)
	carol := createTestUser(t, db, "Carol", "carol@example.com")
	dan := createTestUser(t, db, "Dan", "dan@example.com")
	erin := createTestUser(t, db, "Erin", "erin@example.com")
	org := createTestOrg(t, db, "Org")

	store.Attach(org.ID, []Pair{
		{UserID: carol.ID, Role: models.RoleManager},
		{UserID: dan.ID, Role: models.RoleSocialAssistant},
	})

	role := models.RoleManager
	result, err := store.EligibleUsers(org.ID, &role, "", Page{})
	if err != nil {
		t.Fatalf("EligibleUsers failed: %v", err)
	}

	ids := make(map[uint]bool)
	for _, u := range result.Items {
		ids[u.ID] = true
	}
	if ids[carol.ID] {
		t.Error("Carol already manages the organization and must not be eligible")
	}
	if !ids[dan.ID] {
		t.Error("Dan holds a different role and should be eligible for manager")
	}
	if !ids[erin.ID] {
		t.Error("Erin has no membership and should be eligible")
	}
}

func TestEligibleUsersWithoutRoleExcludesAnyMember(t *testing.T) {
	db := setupTestDB(t)
	store := NewDB(db)
	carol := createTestUser(t, db, "Carol", "carol@example.com")
	dan := createTestUser(t, db, "Dan", "dan@example.com")
	erin := createTestUser(t, db, "Erin", "erin@example.com")
	org := createTestOrg(t, db, "Org")
	other := createTestOrg(t, db, "Other Org")

	store.Attach(org.ID, []Pair{
		{UserID: carol.ID, Role: models.RoleManager},
		{UserID: dan.ID, Role: models.RoleSocialAssistant},
	})
	// Membership elsewhere does not affect eligibility here
	store.Attach(other.ID, []Pair{{UserID: erin.ID, Role: models.RoleManager}})

	result, err := store.EligibleUsers(org.ID, nil, "", Page{})
	if err != nil {
		t.Fatalf("EligibleUsers failed: %v", err)
	}
	if result.TotalCount != 1 {
		t.Fatalf("Expected only Erin to be eligible, got %d", result.TotalCount)
	}
	if result.Items[0].ID != erin.ID {
		t.Errorf("Expected Erin (%d), got %d", erin.ID, result.Items[0].ID)
	}
}

func TestEligibleUsersSearchTerm(t *testing.T) {
	db := setupTestDB(t)
	store := NewDB(db)
	ana := createTestUser(t, db, "Ana Silva", "ana@example.com")
	mariana := createTestUser(t, db, "Mariana", "mariana@example.com")
	bruno := createTestUser(t, db, "Bruno", "bruno@example.com")
	member := createTestUser(t, db, "Adriana", "adriana@example.com")
	org := createTestOrg(t, db, "Org")

	store.Attach(org.ID, []Pair{{UserID: member.ID, Role: models.RoleManager}})

	result, err := store.EligibleUsers(org.ID, nil, "ana", Page{})
	if err != nil {
		t.Fatalf("EligibleUsers failed: %v", err)
	}

	ids := make(map[uint]bool)
	for _, u := range result.Items {
		ids[u.ID] = true
	}
	if !ids[ana.ID] || !ids[mariana.ID] {
		t.Error("Search 'ana' should match 'Ana Silva' and 'Mariana'")
	}
	if ids[bruno.ID] {
		t.Error("Search 'ana' must not match 'Bruno'")
	}
	if ids[member.ID] {
		t.Error("Adriana is a member and must not be eligible despite matching the search")
	}
}

func TestMembersAndEligibleAreComplementary(t *testing.T) {
	db := setupTestDB(t)
	store := NewDB(db)
	org := createTestOrg(t, db, "Org")

	var all []uint
	for i := 0; i < 6; i++ {
		user := createTestUser(t, db, fmt.Sprintf("User %d", i), fmt.Sprintf("user%d@example.com", i))
		all = append(all, user.ID)
		if i%2 == 0 {
			store.Attach(org.ID, []Pair{{UserID: user.ID, Role: models.RoleManager}})
		}
	}

	role := models.RoleManager
	members, err := store.MembersByRole(org.ID, role, Page{Size: 100})
	if err != nil {
		t.Fatalf("MembersByRole failed: %v", err)
	}
	eligible, err := store.EligibleUsers(org.ID, &role, "", Page{Size: 100})
	if err != nil {
		t.Fatalf("EligibleUsers failed: %v", err)
	}

	seen := make(map[uint]int)
	for _, u := range members.Items {
		seen[u.ID]++
	}
	for _, u := range eligible.Items {
		seen[u.ID]++
	}
	for _, id := range all {
		if seen[id] != 1 {
			t.Errorf("User %d should appear in exactly one of the two sets, appeared %d times", id, seen[id])
		}
	}
}

func TestPaginationIsStable(t *testing.T) {
	db := setupTestDB(t)
	store := NewDB(db)
	org := createTestOrg(t, db, "Org")

	expected := make(map[uint]bool)
	for i := 0; i < 7; i++ {
		user := createTestUser(t, db, fmt.Sprintf("User %d", i), fmt.Sprintf("user%d@example.com", i))
		store.Attach(org.ID, []Pair{{UserID: user.ID, Role: models.RoleSocialAssistant}})
		expected[user.ID] = true
	}

	seen := make(map[uint]int)
	for page := 1; ; page++ {
		result, err := store.MembersByRole(org.ID, models.RoleSocialAssistant, Page{Number: page, Size: 3})
		if err != nil {
			t.Fatalf("MembersByRole failed: %v", err)
		}
		if result.TotalCount != 7 {
			t.Errorf("Expected total 7 on every page, got %d", result.TotalCount)
		}
		if len(result.Items) == 0 {
			break
		}
		for _, u := range result.Items {
			seen[u.ID]++
		}
	}

	if len(seen) != len(expected) {
		t.Fatalf("Expected %d distinct users across pages, got %d", len(expected), len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("User %d appeared %d times across pages", id, count)
		}
	}
}

func TestEligibleUsersPaginationAppliesAfterFiltering(t *testing.T) {
	db := setupTestDB(t)
	store := NewDB(db)
	org := createTestOrg(t, db, "Org")

	member := createTestUser(t, db, "Member", "member@example.com")
	store.Attach(org.ID, []Pair{{UserID: member.ID, Role: models.RoleManager}})
	for i := 0; i < 4; i++ {
		createTestUser(t, db, fmt.Sprintf("Free %d", i), fmt.Sprintf("free%d@example.com", i))
	}

	result, err := store.EligibleUsers(org.ID, nil, "", Page{Number: 1, Size: 2})
	if err != nil {
		t.Fatalf("EligibleUsers failed: %v", err)
	}
	if result.TotalCount != 4 {
		t.Errorf("Total must count the filtered set, expected 4 got %d", result.TotalCount)
	}
	if len(result.Items) != 2 {
		t.Errorf("Expected one page of 2 items, got %d", len(result.Items))
	}
}

func TestPageSizeClampedToMaximum(t *testing.T) {
	db := setupTestDB(t)
	store := NewDB(db)
	org := createTestOrg(t, db, "Org")
	user := createTestUser(t, db, "Ana", "ana@example.com")
	store.Attach(org.ID, []Pair{{UserID: user.ID, Role: models.RoleManager}})

	result, err := store.MembersByRole(org.ID, models.RoleManager, Page{Number: 1, Size: 150})
	if err != nil {
		t.Fatalf("MembersByRole failed: %v", err)
	}
	if result.PageSize != maxPageSize {
		t.Errorf("Oversized page size should clamp to %d, got %d", maxPageSize, result.PageSize)
	}

	result, err = store.MembersByRole(org.ID, models.RoleManager, Page{})
	if err != nil {
		t.Fatalf("MembersByRole failed: %v", err)
	}
	if result.PageSize != defaultPageSize {
		t.Errorf("Missing page size should default to %d, got %d", defaultPageSize, result.PageSize)
	}
}
