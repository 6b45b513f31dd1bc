package model

import "testing"

func TestSaleStatusValid(t *testing.T) {
	for _, s := range []SaleStatus{SalePending, SaleCompleted, SaleCanceled} {
		if !s.Valid() {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	if SaleStatus("REFUNDED").Valid() {
		t.Fatalf("expected unknown status to be invalid")
	}
}

func TestPrivilegeCodesMergesRoleAndDirect(t *testing.T) {
	u := User{
		Privileges: []Privilege{{Code: PrivSaleCreate}},
		Role:       &Role{Privileges: []Privilege{{Code: PrivSaleCreate}, {Code: PrivReportView}}},
	}
	codes := u.PrivilegeCodes()
	if len(codes) != 2 {
		t.Fatalf("expected 2 unique codes, got %v", codes)
	}
}

func TestUserPassword(t *testing.T) {
	var u User
	if err := u.SetPassword("s3cret!"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if !u.CheckPassword("s3cret!") || u.CheckPassword("wrong") {
		t.Fatalf("password check mismatch")
	}
}
