package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/db"
	"github.com/smith3v/sentence-trainer/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MinPasswordLength = 8

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Register validates a self-service signup and creates a regular student.
func Register(ctx context.Context, gdb *gorm.DB, username, password, confirm string) (*db.StudentAccount, error) {
	username = normalizeUsername(username)
	switch {
	case username == "" || password == "":
		return nil, apperr.Validation("username and password are required")
	case len(password) < MinPasswordLength:
		return nil, apperr.Validation(fmt.Sprintf("password must be at least %d characters long", MinPasswordLength))
	case password != confirm:
		return nil, apperr.Validation("passwords do not match")
	}
	return Create(ctx, gdb, username, password, false)
}

// Create stores a new account. It is used by signup and the create-user
// command.
func Create(ctx context.Context, gdb *gorm.DB, username, password string, admin bool) (*db.StudentAccount, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, apperr.Validation("username and password are required")
	}
	existing, err := FindByUsername(ctx, gdb, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Validation("username is already taken")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	student := &db.StudentAccount{Username: username, PasswordHash: hash, IsAdmin: admin}
	if err := gdb.WithContext(ctx).Create(student).Error; err != nil {
		return nil, fmt.Errorf("failed to create account %q: %w", username, err)
	}
	logger.Info("account created", "user_id", student.ID, "username", username, "admin", admin)
	return student, nil
}

// Authenticate returns the account for valid credentials and nil otherwise.
func Authenticate(ctx context.Context, gdb *gorm.DB, username, password string) (*db.StudentAccount, error) {
	student, err := FindByUsername(ctx, gdb, username)
	if err != nil || student == nil {
		return nil, err
	}
	if !CheckPassword(student.PasswordHash, password) {
		return nil, nil
	}
	return student, nil
}

func FindByUsername(ctx context.Context, gdb *gorm.DB, username string) (*db.StudentAccount, error) {
	var student db.StudentAccount
	err := gdb.WithContext(ctx).Where("username = ?", normalizeUsername(username)).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account %q: %w", username, err)
	}
	return &student, nil
}

func Get(ctx context.Context, gdb *gorm.DB, id uint) (*db.StudentAccount, error) {
	var student db.StudentAccount
	err := gdb.WithContext(ctx).First(&student, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account %d: %w", id, err)
	}
	return &student, nil
}
