package testutil

import (
	"testing"

	"github.com/smith3v/sentence-trainer/pkg/db"
	"gorm.io/gorm"
)

func CreateStudent(t *testing.T, gdb *gorm.DB, username string, admin bool) *db.StudentAccount {
	t.Helper()
	student := &db.StudentAccount{Username: username, PasswordHash: "x", IsAdmin: admin}
	if err := gdb.Create(student).Error; err != nil {
		t.Fatalf("failed to create student %q: %v", username, err)
	}
	return student
}
