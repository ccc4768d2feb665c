// Package cli implements the administrative subcommands run against the
// configured database.
package cli

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strings"

	"github.com/terraincognita07/calm/internal/db"
	"github.com/terraincognita07/calm/internal/services"
	"gorm.io/gorm"
)

const temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

type Environment struct {
	Database db.Options
	Stdin    *os.File
	Stdout   io.Writer
}

func (env Environment) open() (*gorm.DB, func(), error) {
	database, err := db.Open(env.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database init failed: %w", err)
	}
	closeDB := func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return database, closeDB, nil
}

// RunCreateUserCommand creates an account from --email and --name. The
// password is prompted for and must pass the strength policy.
func RunCreateUserCommand(ctx context.Context, env Environment, args []string) error {
	flags := flag.NewFlagSet("create-user", flag.ContinueOnError)
	flags.SetOutput(env.Stdout)
	email := flags.String("email", "", "account email")
	name := flags.String("name", "", "display name")
	if err := flags.Parse(args); err != nil {
		return err
	}
	// An omitted flag is a missing field, not a blank one.
	given := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { given[f.Name] = true })
	if !given["email"] {
		email = nil
	}
	if !given["name"] {
		name = nil
	}

	password, err := newPrompter(env.Stdin, env.Stdout).newPassword()
	if err != nil {
		return err
	}
	if err := services.ValidatePasswordStrength(password); err != nil {
		return err
	}

	database, closeDB, err := env.open()
	if err != nil {
		return err
	}
	defer closeDB()

	users := services.NewUserService(db.NewRepositories(database).Users)
	user, err := users.Create(ctx, 0, services.UserInput{
		Email:    email,
		Name:     name,
		Password: &password,
	})
	if err != nil {
		if validationErr, ok := services.AsValidationError(err); ok {
			return fmt.Errorf("invalid user: %s", describeFieldErrors(validationErr))
		}
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(env.Stdout, "Created user %d <%s>\n", user.ID, user.Email)
	return nil
}

// RunResetPasswordCommand replaces the password of the account behind
// email with a random temporary one and prints it.
func RunResetPasswordCommand(ctx context.Context, env Environment, email string) error {
	emailKey := services.EmailKey(email)
	if emailKey == "" {
		return errors.New("a valid email is required")
	}

	database, closeDB, err := env.open()
	if err != nil {
		return err
	}
	defer closeDB()

	temporaryPassword, err := generateTemporaryPassword(12)
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}

	authService := services.NewAuthService(db.NewRepositories(database).Users)
	if _, err := authService.ResetPassword(ctx, emailKey, temporaryPassword); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return fmt.Errorf("user %s not found", emailKey)
		}
		return err
	}

	fmt.Fprintln(env.Stdout, "Password reset successful")
	fmt.Fprintf(env.Stdout, "Temporary password: %s\n", temporaryPassword)
	return nil
}

func generateTemporaryPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	limit := big.NewInt(int64(len(temporaryPasswordAlphabet)))
	password := make([]byte, length)
	for index := range password {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		password[index] = temporaryPasswordAlphabet[position.Int64()]
	}
	return string(password), nil
}

func describeFieldErrors(validationErr *services.ValidationError) string {
	fields := make([]string, 0, len(validationErr.Fields))
	for field := range validationErr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(validationErr.Fields[field], " "))
	}
	return strings.Join(parts, "; ")
}
