package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/terraincognita07/calm/internal/db"
	"github.com/terraincognita07/calm/internal/models"
	"github.com/terraincognita07/calm/internal/services"
	"golang.org/x/crypto/bcrypt"
)

func newTestEnvironment(t *testing.T, stdin string) (Environment, *bytes.Buffer) {
	t.Helper()

	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("create stdin pipe: %v", err)
	}
	if _, err := writer.WriteString(stdin); err != nil {
		t.Fatalf("write stdin: %v", err)
	}
	_ = writer.Close()
	t.Cleanup(func() { _ = reader.Close() })

	output := &bytes.Buffer{}
	return Environment{
		Database: db.Options{Driver: db.DriverSQLite, Path: filepath.Join(t.TempDir(), "calm-cli-test.db")},
		Stdin:    reader,
		Stdout:   output,
	}, output
}

func loadUser(t *testing.T, env Environment, email string) models.User {
	t.Helper()

	database, err := db.Open(env.Database)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB, _ := database.DB()
	defer sqlDB.Close()

	var user models.User
	if err := database.Where("email = ?", email).First(&user).Error; err != nil {
		t.Fatalf("load user %s: %v", email, err)
	}
	return user
}

func TestCreateUserThenResetPassword(t *testing.T) {
	t.Parallel()

	env, output := newTestEnvironment(t, "StrongPass1\nStrongPass1\n")
	err := RunCreateUserCommand(context.Background(), env, []string{"--email", "Admin@Calm.Test", "--name", "Admin"})
	if err != nil {
		t.Fatalf("create-user returned error: %v", err)
	}
	if !strings.Contains(output.String(), "Created user 1 <Admin@calm.test>") {
		t.Fatalf("unexpected create-user output %q", output.String())
	}

	created := loadUser(t, env, "Admin@calm.test")
	if bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("StrongPass1")) != nil {
		t.Fatal("expected prompted password to be stored as bcrypt hash")
	}

	output.Reset()
	if err := RunResetPasswordCommand(context.Background(), env, " admin@calm.test "); err != nil {
		t.Fatalf("reset-password returned error: %v", err)
	}

	var temporary string
	for _, line := range strings.Split(output.String(), "\n") {
		if value, found := strings.CutPrefix(line, "Temporary password: "); found {
			temporary = value
		}
	}
	if len(temporary) != 12 {
		t.Fatalf("expected 12-character temporary password in %q", output.String())
	}

	reset := loadUser(t, env, "Admin@calm.test")
	if bcrypt.CompareHashAndPassword([]byte(reset.PasswordHash), []byte(temporary)) != nil {
		t.Fatal("expected temporary password to replace the stored hash")
	}
}

func TestCreateUserRejectsMismatchedAndWeakPasswords(t *testing.T) {
	t.Parallel()

	env, _ := newTestEnvironment(t, "StrongPass1\nStrongPass2\n")
	err := RunCreateUserCommand(context.Background(), env, []string{"--email", "a@calm.test", "--name", "A"})
	if !errors.Is(err, errPasswordMismatch) {
		t.Fatalf("expected mismatch error, got %v", err)
	}

	env, _ = newTestEnvironment(t, "weak\nweak\n")
	err = RunCreateUserCommand(context.Background(), env, []string{"--email", "a@calm.test", "--name", "A"})
	if !errors.Is(err, services.ErrWeakPassword) || !strings.Contains(err.Error(), "at least 8 characters") {
		t.Fatalf("expected weak password error, got %v", err)
	}
}

func TestCreateUserReportsFieldErrors(t *testing.T) {
	t.Parallel()

	env, _ := newTestEnvironment(t, "StrongPass1\nStrongPass1\n")
	err := RunCreateUserCommand(context.Background(), env, []string{"--name", "No Email"})
	if err == nil || !strings.Contains(err.Error(), "email: This field is required.") {
		t.Fatalf("expected missing email error, got %v", err)
	}

	env, _ = newTestEnvironment(t, "StrongPass1\nStrongPass1\n")
	err = RunCreateUserCommand(context.Background(), env, []string{"--email", " ", "--name", "Blank Email"})
	if err == nil || !strings.Contains(err.Error(), "email: This field may not be blank.") {
		t.Fatalf("expected blank email error, got %v", err)
	}
}

func TestResetPasswordUnknownUser(t *testing.T) {
	t.Parallel()

	env, _ := newTestEnvironment(t, "")
	err := RunResetPasswordCommand(context.Background(), env, "missing@calm.test")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}

	if err := RunResetPasswordCommand(context.Background(), env, "not-an-email"); err == nil {
		t.Fatal("expected invalid email to be rejected")
	}
}

func TestGenerateTemporaryPasswordMinimumLength(t *testing.T) {
	t.Parallel()

	password, err := generateTemporaryPassword(4)
	if err != nil {
		t.Fatalf("generateTemporaryPassword returned error: %v", err)
	}
	if len(password) != 8 {
		t.Fatalf("generateTemporaryPassword minimum len = %d, want 8", len(password))
	}
}

func TestGenerateTemporaryPasswordAlphabet(t *testing.T) {
	t.Parallel()

	password, err := generateTemporaryPassword(24)
	if err != nil {
		t.Fatalf("generateTemporaryPassword returned error: %v", err)
	}
	if len(password) != 24 {
		t.Fatalf("generateTemporaryPassword len = %d, want 24", len(password))
	}

	for _, char := range password {
		if !strings.ContainsRune(temporaryPasswordAlphabet, char) {
			t.Fatalf("password %q contains char %q outside alphabet", password, char)
		}
	}
}
