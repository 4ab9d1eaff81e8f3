package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRoleIsValid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleUser, true},
		{RoleAdmin, true},
		{Role(""), false},
		{Role("superuser"), false},
		{Role("Admin"), false},
	}

	for _, tt := range tests {
		if got := tt.role.IsValid(); got != tt.want {
			t.Errorf("Role(%q).IsValid() = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestIdentityHasRole(t *testing.T) {
	id := &Identity{UserID: "u1", Role: RoleUser}

	if !id.HasRole(RoleUser) {
		t.Error("expected user role to match")
	}
	if id.HasRole(RoleAdmin) {
		t.Error("user must not match admin allow-list")
	}
	if !id.HasRole(RoleAdmin, RoleUser) {
		t.Error("expected match when role is anywhere in the allow-list")
	}
}

func TestPreferencesMerge(t *testing.T) {
	on := true
	off := false

	base := Preferences{DefaultCountry: "PK", Units: UnitsMetric, Notifications: &on}

	t.Run("partial update keeps unset fields", func(t *testing.T) {
		got := Preferences{Units: UnitsImperial}.Merge(base)
		if got.DefaultCountry != "PK" {
			t.Errorf("DefaultCountry = %q, want PK", got.DefaultCountry)
		}
		if got.Units != UnitsImperial {
			t.Errorf("Units = %q, want imperial", got.Units)
		}
		if got.Notifications == nil || !*got.Notifications {
			t.Error("Notifications should remain true")
		}
	})

	t.Run("explicit false overrides", func(t *testing.T) {
		got := Preferences{Notifications: &off}.Merge(base)
		if got.Notifications == nil || *got.Notifications {
			t.Error("Notifications should be false after merge")
		}
	})

	t.Run("empty update is a no-op", func(t *testing.T) {
		got := Preferences{}.Merge(base)
		if got != base {
			t.Errorf("Merge changed base: %+v", got)
		}
	})
}

func TestUserPasswordNeverSerialized(t *testing.T) {
	u := User{
		ID:           "01HV0000000000000000000000",
		Name:         "John Doe",
		Email:        "john@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$secret$secret",
		Role:         RoleUser,
		IsActive:     true,
	}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}
	if strings.Contains(string(data), "argon2id") || strings.Contains(string(data), "password") {
		t.Errorf("serialized user leaks password material: %s", data)
	}
}

func TestValidCountryCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"PK", true},
		{"US", true},
		{"pk", true},
		{"IND", true},
		{"P", false},
		{"PAKI", false},
		{"P1", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidCountryCode(tt.code); got != tt.want {
			t.Errorf("ValidCountryCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
