package organizations

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/membership"
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/models"
)

type membersResponse struct {
	Data       []MemberResponse   `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

type summariesResponse struct {
	Data       []UserSummary      `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

type mutationResponse struct {
	Results []PairResponse `json:"results"`
}

func TestAssociateMembersAsManager(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter(db)
	org := createTestOrg(t, db, "Org")
	manager := createTestUser(t, db, "Bob", "bob@example.com")
	makeManager(t, db, manager, org)
	candidate := createTestUser(t, db, "Ana", "ana@example.com")

	w := doRequest(r, "POST", fmt.Sprintf("/api/organizations/%d/members", org.ID), authHeader(t, manager), MembersRequest{
		Users: []membership.Pair{{UserID: candidate.ID, Role: models.RoleSocialAssistant}},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp mutationResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || !resp.Results[0].OK {
		t.Fatalf("Expected one successful result, got %+v", resp.Results)
	}

	var count int64
	db.Model(&models.OrganizationMembership{}).
		Where("organization_id = ? AND user_id = ?", org.ID, candidate.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 membership row, got %d", count)
	}
}

func TestAssociateMembersIsIdempotentOverHTTP(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter(db)
	org := createTestOrg(t, db, "Org")
	manager := createTestUser(t, db, "Bob", "bob@example.com")
	makeManager(t, db, manager, org)
	candidate := createTestUser(t, db, "Ana", "ana@example.com")

	body := MembersRequest{Users: []membership.Pair{{UserID: candidate.ID, Role: models.RoleSocialAssistant}}}
	path := fmt.Sprintf("/api/organizations/%d/members", org.ID)

	for i := 0; i < 2; i++ {
		w := doRequest(r, "POST", path, authHeader(t, manager), body)
		if w.Code != http.StatusOK {
			t.Fatalf("Request %d: expected status 200, got %d", i+1, w.Code)
		}
		var resp mutationResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		if !resp.Results[0].OK {
			t.Fatalf("Request %d: expected pair to succeed, got %+v", i+1, resp.Results[0])
		}
	}

	var count int64
	db.Model(&models.OrganizationMembership{}).
		Where("organization_id = ? AND user_id = ?", org.ID, candidate.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 membership row after repeated associate, got %d", count)
	}
}

func TestAssociateMembersReportsPerPairErrors(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter(db)
	org := createTestOrg(t, db, "Org")
	manager := createTestUser(t, db, "Bob", "bob@example.com")
	makeManager(t, db, manager, org)
	candidate := createTestUser(t, db, "Ana", "ana@example.com")

	w := doRequest(r, "POST", fmt.Sprintf("/api/organizations/%d/members", org.ID), authHeader(t, manager), MembersRequest{
		Users: []membership.Pair{
			{UserID: candidate.ID, Role: models.RoleSocialAssistant},
			{UserID: 9999, Role: models.RoleSocialAssistant},
			{UserID: candidate.ID, Role: "chancellor"},
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp mutationResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(resp.Results))
	}
	if !resp.Results[0].OK {
		t.Error("First pair should succeed")
	}
	if resp.Results[1].OK || resp.Results[1].Error == "" {
		t.Error("Unknown user pair should fail with an error message")
	}
	if resp.Results[2].OK {
		t.Error("Unknown role pair should fail")
	}

	var count int64
	db.Model(&models.OrganizationMembership{}).
		Where("organization_id = ? AND user_id = ?", org.ID, candidate.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("Valid pair should still be attached, got %d rows", count)
	}
}

func TestAssociateMembersForbiddenForOtherManager(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter(db)
	managed := createTestOrg(t, db, "Managed")
	other := createTestOrg(t, db, "Other")
	manager := createTestUser(t, db, "Bob", "bob@example.com")
	makeManager(t, db, manager, managed)
	candidate := createTestUser(t, db, "Ana", "ana@example.com")

	w := doRequest(r, "POST", fmt.Sprintf("/api/organizations/%d/members", other.ID), authHeader(t, manager), MembersRequest{
		Users: []membership.Pair{{UserID: candidate.ID, Role: models.RoleSocialAssistant}},
	})

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
}

func TestAssociateMembersRequiresNonEmptyBatch(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter(db)
	org := createTestOrg(t, db, "Org")
	admin := createTestAdmin(t, db, "admin@example.com")

	w := doRequest(r, "POST", fmt.Sprintf("/api/organizations/%d/members", org.ID), authHeader(t, admin), MembersRequest{
		Users: []membership.Pair{},
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for empty batch, got %d", w.Code)
	}
}

func TestDisassociateMembers(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter(db)
	org := createTestOrg(t, db, "Org")
	admin := createTestAdmin(t, db, "admin@example.com")
	member := createTestUser(t, db, "Ana", "ana@example.com")
	store := membership.NewDB(db)
	store.Attach(org.ID, []membership.Pair{{UserID: member.ID, Role: models.RoleSocialAssistant}})

	w := doRequest(r, "DELETE", fmt.Sprintf("/api/organizations/%d/members", org.ID), authHeader(t, admin), MembersRequest{
		Users: []membership.Pair{{UserID: member.ID, Role: models.RoleSocialAssistant}},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.OrganizationMembership{}).
		Where("organization_id = ? AND user_id = ?", org.ID, member.ID).
		Count(&count)
	if count != 0 {
		t.Errorf("Expected membership removed, got %d rows", count)
	}
}

func TestDisassociateNonMemberIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter(db)
	org := createTestOrg(t, db, "Org")
	admin := createTestAdmin(t, db, "admin@example.com")
	stranger := createTestUser(t, db, "Eve", "eve@example.com")

	w := doRequest(r, "DELETE", fmt.Sprintf("/api/organizations/%d/members", org.ID), authHeader(t, admin), MembersRequest{
		Users: []membership.Pair{{UserID: stranger.ID, Role: models.RoleSocialAssistant}},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp mutationResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Results[0].OK {
		t.Errorf("Detaching a non-member should succeed as a no-op, got %+v", resp.Results[0])
	}
}

func TestListMembersWithRoleFilter(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter(db)
	org := createTestOrg(t, db, "Org")
	admin := createTestAdmin(t, db, "admin@example.com")
	store := membership.NewDB(db)

	manager := createTestUser(t, db, "Bob", "bob@example.com")
	assistant := createTestUser(t, db, "Ana", "ana@example.com")
	store.Attach(org.ID, []membership.Pair{
		{UserID: manager.ID, Role: models.RoleManager},
		{UserID: assistant.ID, Role: models.RoleSocialAssistant},
	})

	w := doRequest(r, "GET", fmt.Sprintf("/api/organizations/%d/members?role=social-assistant", org.ID), authHeader(t, admin), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp summariesResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Data) != 1 {
		t.Fatalf("Expected 1 social-assistant, got %d", len(resp.Data))
	}
	if resp.Data[0].ID != assistant.ID {
		t.Errorf("Expected user %d, got %d", assistant.ID, resp.Data[0].ID)
	}
	if resp.Pagination.Total != 1 {
		t.Errorf("Expected total 1, got %d", resp.Pagination.Total)
	}
}

func TestListMembersWithoutRoleReturnsAllRows(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter(db)
	org := createTestOrg(t, db, "Org")
	admin := createTestAdmin(t, db, "admin@example.com")
	store := membership.NewDB(db)

	dual := createTestUser(t, db, "Bob", "bob@example.com")
	store.Attach(org.ID, []membership.Pair{
		{UserID: dual.ID, Role: models.RoleManager},
		{UserID: dual.ID, Role: models.RoleSocialAssistant},
	})

	w := doRequest(r, "GET", fmt.Sprintf("/api/organizations/%d/members", org.ID), authHeader(t, admin), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp membersResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Data) != 2 {
		t.Fatalf("Expected 2 membership rows for a dual-role member, got %d", len(resp.Data))
	}
	roles := map[string]bool{resp.Data[0].Role: true, resp.Data[1].Role: true}
	if !roles["manager"] || !roles["social-assistant"] {
		t.Errorf("Expected both roles listed, got %v", roles)
	}
}

func TestListMembersUnknownRoleReturns400(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter(db)
	org := createTestOrg(t, db, "Org")
	admin := createTestAdmin(t, db, "admin@example.com")

	w := doRequest(r, "GET", fmt.Sprintf("/api/organizations/%d/members?role=chancellor", org.ID), authHeader(t, admin), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestListEligibleExcludesMembersAndSearches(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter(db)
	org := createTestOrg(t, db, "Org")
	manager := createTestUser(t, db, "Bob", "bob@example.com")
	makeManager(t, db, manager, org)

	ana := createTestUser(t, db, "Ana Silva", "ana@example.com")
	createTestUser(t, db, "Mariana Souza", "mariana@example.com")
	createTestUser(t, db, "Bruno Lima", "bruno@example.com")
	adriana := createTestUser(t, db, "Adriana Costa", "adriana@example.com")
	store := membership.NewDB(db)
	store.Attach(org.ID, []membership.Pair{{UserID: adriana.ID, Role: models.RoleSocialAssistant}})

	w := doRequest(r, "GET", fmt.Sprintf("/api/organizations/%d/members/eligible?role=social-assistant&q=ana", org.ID), authHeader(t, manager), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp summariesResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Data) != 2 {
		t.Fatalf("Expected 2 eligible users matching 'ana', got %d: %+v", len(resp.Data), resp.Data)
	}
	for _, u := range resp.Data {
		if u.ID == adriana.ID {
			t.Error("Existing member must not appear in the eligible listing")
		}
	}
	found := false
	for _, u := range resp.Data {
		if u.ID == ana.ID {
			found = true
		}
	}
	if !found {
		t.Error("Expected Ana Silva in the eligible listing")
	}
}

func TestListEligibleForbiddenForNonManager(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter(db)
	org := createTestOrg(t, db, "Org")
	assistant := createTestUser(t, db, "Dan", "dan@example.com")
	store := membership.NewDB(db)
	store.Attach(org.ID, []membership.Pair{{UserID: assistant.ID, Role: models.RoleSocialAssistant}})

	w := doRequest(r, "GET", fmt.Sprintf("/api/organizations/%d/members/eligible", org.ID), authHeader(t, assistant), nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
}
