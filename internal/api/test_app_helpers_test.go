package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/calm/internal/db"
	"github.com/terraincognita07/calm/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecretKey = "test-secret-key-with-at-least-32-chars"

type testEnv struct {
	app      *fiber.App
	database *gorm.DB
	handler  *Handler
}

type testConfig struct {
	handler Options
	app     AppOptions
}

func newTestApp(t *testing.T, configure ...func(*testConfig)) testEnv {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "calm-api-test.db")
	database, err := db.OpenSQLite(databasePath, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	config := testConfig{handler: Options{SecretKey: testSecretKey, Location: time.UTC}}
	for _, apply := range configure {
		apply(&config)
	}

	handler, err := NewHandler(database, config.handler)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	return testEnv{app: NewApp(handler, config.app), database: database, handler: handler}
}

func createTestUser(t *testing.T, database *gorm.DB, email string, name string, password string) models.User {
	t.Helper()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		PasswordHash: string(passwordHash),
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createTestRecord[T any](t *testing.T, database *gorm.DB, record T) T {
	t.Helper()

	if err := database.Create(&record).Error; err != nil {
		t.Fatalf("create %T: %v", record, err)
	}
	return record
}

func bearerToken(t *testing.T, env testEnv, user models.User) string {
	t.Helper()

	token, _, err := env.handler.buildToken(&user)
	if err != nil {
		t.Fatalf("build token: %v", err)
	}
	return token
}

// sendJSON issues a request with an optional JSON body and bearer token and
// returns the response with its body already read.
func sendJSON(t *testing.T, env testEnv, method string, path string, body any, token string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch value := body.(type) {
		case string:
			reader = strings.NewReader(value)
		default:
			encoded, err := json.Marshal(value)
			if err != nil {
				t.Fatalf("encode request body: %v", err)
			}
			reader = bytes.NewReader(encoded)
		}
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return response, payload
}

func expectStatus(t *testing.T, response *http.Response, body []byte, status int) {
	t.Helper()
	if response.StatusCode != status {
		t.Fatalf("expected status %d, got %d: %s", status, response.StatusCode, string(body))
	}
}

func readAPIError(t *testing.T, body []byte) string {
	t.Helper()

	payload := map[string]string{}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error body %q: %v", string(body), err)
	}
	return payload["error"]
}

func readFieldErrors(t *testing.T, body []byte) map[string][]string {
	t.Helper()

	payload := map[string][]string{}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode field errors %q: %v", string(body), err)
	}
	return payload
}

func decodeBody[T any](t *testing.T, body []byte) T {
	t.Helper()

	var value T
	if err := json.Unmarshal(body, &value); err != nil {
		t.Fatalf("decode body %q: %v", string(body), err)
	}
	return value
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
