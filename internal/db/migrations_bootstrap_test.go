package db

import (
	"errors"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/terraincognita07/calm/internal/models"
	embeddedmigrations "github.com/terraincognita07/calm/migrations"
	"gorm.io/gorm"
)

var resourceTables = []string{"users", "profiles", "assessments", "health_data", "feedback", "professionals", "appointments", "clinics"}

func TestOpenSQLiteMigratesCleanDatabase(t *testing.T) {
	database := openMigratedSQLite(t, filepath.Join(t.TempDir(), "clean.db"))

	for _, table := range resourceTables {
		if !database.Migrator().HasTable(table) {
			t.Fatalf("expected table %s after migrating", table)
		}
	}
	if !database.Migrator().HasColumn("users", "last_login_at") {
		t.Fatal("expected users.last_login_at after migrating")
	}
	assertLedgerComplete(t, database)
}

func TestOpenSQLiteUpgradesDatabaseWithoutLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	seedFirstMigrationOnly(t, path)

	database := openMigratedSQLite(t, path)
	assertLedgerComplete(t, database)

	var user struct {
		Name        string
		LastLoginAt *string
	}
	if err := database.Table("users").Where("email = ?", "early@test.io").Take(&user).Error; err != nil {
		t.Fatalf("load seeded user: %v", err)
	}
	if user.Name != "Early" || user.LastLoginAt != nil {
		t.Fatalf("expected seeded row untouched with NULL last login, got %+v", user)
	}
}

func TestOpenSQLiteToleratesColumnAddedByHand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patched.db")
	seedFirstMigrationOnly(t, path, `ALTER TABLE users ADD COLUMN last_login_at DATETIME`)

	assertLedgerComplete(t, openMigratedSQLite(t, path))
}

func TestOpenSQLiteSecondBootLeavesLedgerAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reboot.db")

	first, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	before := ledger(t, first)
	sqlDB, _ := first.DB()
	_ = sqlDB.Close()

	after := ledger(t, openMigratedSQLite(t, path))
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("ledger changed between boots: before=%v after=%v", before, after)
	}
}

func TestOpenSQLiteBuildsCaseInsensitiveEmailIndex(t *testing.T) {
	database := openMigratedSQLite(t, filepath.Join(t.TempDir(), "index.db"))

	var definition string
	if err := database.Raw(`SELECT sql FROM sqlite_master WHERE type = 'index' AND name = ?`, "idx_users_email_normalized").Scan(&definition).Error; err != nil {
		t.Fatalf("load index definition: %v", err)
	}
	if !strings.Contains(strings.ToLower(strings.ReplaceAll(definition, " ", "")), "lower(trim(email))") {
		t.Fatalf("expected index on lower(trim(email)), got %q", definition)
	}

	if err := database.Create(&models.User{Email: "Nia@Clinic.io", Name: "Nia", PasswordHash: "hash"}).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	err := database.Create(&models.User{Email: "nia@clinic.io", Name: "Nia again", PasswordHash: "hash"}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected case-only duplicate to hit the unique index, got %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(Options{Driver: "mysql"}); err == nil {
		t.Fatal("expected unknown driver to be rejected")
	}
	if _, err := Open(Options{Driver: DriverPostgres}); err == nil {
		t.Fatal("expected postgres without dsn to be rejected")
	}
}

func TestSplitSQLStatements(t *testing.T) {
	statements := splitSQLStatements("CREATE TABLE a (id INTEGER);\n\n ;CREATE INDEX b ON a (id);  ")
	expected := []string{"CREATE TABLE a (id INTEGER)", "CREATE INDEX b ON a (id)"}
	if !reflect.DeepEqual(statements, expected) {
		t.Fatalf("splitSQLStatements() = %v, want %v", statements, expected)
	}
}

func TestDialectsShipMatchingMigrations(t *testing.T) {
	sqliteMigrations, err := dialectMigrations(DriverSQLite)
	if err != nil {
		t.Fatalf("sqlite migrations: %v", err)
	}
	postgresMigrations, err := dialectMigrations(DriverPostgres)
	if err != nil {
		t.Fatalf("postgres migrations: %v", err)
	}
	if len(sqliteMigrations) == 0 || len(sqliteMigrations) != len(postgresMigrations) {
		t.Fatalf("expected matching migration sets, sqlite=%d postgres=%d", len(sqliteMigrations), len(postgresMigrations))
	}
	for index := range sqliteMigrations {
		if sqliteMigrations[index].name != postgresMigrations[index].name {
			t.Fatalf("migration %d differs: sqlite=%s postgres=%s", index, sqliteMigrations[index].name, postgresMigrations[index].name)
		}
	}
}

func openMigratedSQLite(t *testing.T, path string) *gorm.DB {
	t.Helper()

	database, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return database
}

// seedFirstMigrationOnly builds a database from 0001 without a ledger, as
// deployments predating schema_migrations have it.
func seedFirstMigrationOnly(t *testing.T, path string, extra ...string) {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(sqliteDSN(path)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open seed sqlite: %v", err)
	}
	initSQL, err := fs.ReadFile(embeddedmigrations.Files, "sqlite/0001_init.sql")
	if err != nil {
		t.Fatalf("read 0001: %v", err)
	}
	for _, statement := range append(splitSQLStatements(string(initSQL)), extra...) {
		if err := database.Exec(statement).Error; err != nil {
			t.Fatalf("seed %q: %v", statement, err)
		}
	}
	if err := database.Exec(`INSERT INTO users (email, name, password_hash) VALUES (?, ?, ?)`, "early@test.io", "Early", "hash").Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	sqlDB, _ := database.DB()
	_ = sqlDB.Close()
}

func ledger(t *testing.T, database *gorm.DB) []schemaMigration {
	t.Helper()

	var rows []schemaMigration
	if err := database.Order("version").Find(&rows).Error; err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	return rows
}

func assertLedgerComplete(t *testing.T, database *gorm.DB) {
	t.Helper()

	migrations, err := dialectMigrations(DriverSQLite)
	if err != nil {
		t.Fatalf("sqlite migrations: %v", err)
	}
	rows := ledger(t, database)
	if len(rows) != len(migrations) {
		t.Fatalf("expected %d ledger rows, got %d", len(migrations), len(rows))
	}
	for index, row := range rows {
		if row.Version != migrations[index].version || row.Name != migrations[index].name {
			t.Fatalf("ledger row %d = %+v, want %s", index, row, migrations[index].name)
		}
	}
}
