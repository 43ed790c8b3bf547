package accounts

import (
	"context"
	"testing"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/internal/testutil"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	ctx := context.Background()

	student, err := Register(ctx, gdb, "  Anna ", "correct horse", "correct horse")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if student.Username != "anna" || student.IsAdmin {
		t.Fatalf("unexpected account %+v", student)
	}
	if student.PasswordHash == "correct horse" {
		t.Fatal("expected password to be hashed")
	}

	got, err := Authenticate(ctx, gdb, "ANNA", "correct horse")
	if err != nil || got == nil || got.ID != student.ID {
		t.Fatalf("expected successful login, got %v, %v", got, err)
	}
	if got, err := Authenticate(ctx, gdb, "anna", "wrong password"); err != nil || got != nil {
		t.Fatalf("expected failed login, got %v, %v", got, err)
	}
	if got, err := Authenticate(ctx, gdb, "nobody", "whatever1"); err != nil || got != nil {
		t.Fatalf("expected unknown user to fail, got %v, %v", got, err)
	}
}

func TestRegisterValidation(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	ctx := context.Background()
	if _, err := Register(ctx, gdb, "anna", "password1", "password1"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	cases := []struct{ username, password, confirm string }{
		{"", "password1", "password1"},
		{"ben", "short", "short"},
		{"ben", "password1", "password2"},
		{"Anna", "password1", "password1"},
	}
	for _, tc := range cases {
		if _, err := Register(ctx, gdb, tc.username, tc.password, tc.confirm); !apperr.IsValidation(err) {
			t.Fatalf("Register(%q) = %v, want validation error", tc.username, err)
		}
	}
}

func TestCreateAdminAndGet(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	ctx := context.Background()

	admin, err := Create(ctx, gdb, "root", "s3cret-pass", true)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	got, err := Get(ctx, gdb, admin.ID)
	if err != nil || got == nil || !got.IsAdmin {
		t.Fatalf("expected admin account, got %v, %v", got, err)
	}
	if got, err := Get(ctx, gdb, 999); err != nil || got != nil {
		t.Fatalf("expected nil for missing account, got %v, %v", got, err)
	}
}
