package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/learning-path/backend/internal/ai"
	"example.com/learning-path/backend/internal/auth"
	"example.com/learning-path/backend/internal/models"
)

func setupEnv(t *testing.T) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "courses.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": 1, "title": "Python", "domain": "Data Science", "level": "Beginner", "durationHours": 20, "tags": ["python", "pandas"], "prereqIds": []},
		{"id": 2, "title": "SQL", "domain": "Data Science", "level": "Beginner", "durationHours": 15, "tags": ["sql"], "prereqIds": []},
		{"id": 3, "title": "HTML", "domain": "Web Development", "level": "Beginner", "durationHours": 10, "tags": ["html"], "prereqIds": []}
	]`), 0o600))

	t.Setenv("ENV_FILE", "")
	t.Setenv("CATALOG_SOURCE", "json")
	t.Setenv("CATALOG_PATH", path)
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("AI_PROVIDER", "groq")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADMIN_USER_IDS", "")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestExtractOffline(t *testing.T) {
	setupEnv(t)

	stdout, _, err := execute(t, "extract", "--offline", "I want to learn python for data science")
	require.NoError(t, err)

	var got ai.ExtractionResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.True(t, got.Fallback)
	assert.Equal(t, "Data Science", got.TargetDomain)
	assert.Equal(t, []string{"python"}, got.Tags)
}

func TestExtractCatalogTagsWithoutProvider(t *testing.T) {
	setupEnv(t)

	stdout, stderr, err := execute(t, "extract", "--catalog-tags", "pandas", "and", "sql")
	require.NoError(t, err)
	assert.Contains(t, stderr, "upstream_unavailable")

	var got ai.ExtractionResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.True(t, got.Fallback)
	assert.Equal(t, []string{"pandas", "sql"}, got.Tags)
}

func TestExtractRequiresDescription(t *testing.T) {
	setupEnv(t)

	_, _, err := execute(t, "extract")
	assert.Error(t, err)
}

func TestRecommend(t *testing.T) {
	setupEnv(t)

	stdout, _, err := execute(t, "recommend", "--domain", "Data Science", "--interests", "python,sql", "--hours", "5", "--weeks", "7")
	require.NoError(t, err)

	var got models.Plan
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got.Steps, 2)
	assert.Equal(t, 35, got.TotalHours)
}

// TestPlanWithoutProvider проверяет, что план без ключа провайдера завершается ошибкой, а не эвристикой.
func TestPlanWithoutProvider(t *testing.T) {
	setupEnv(t)

	stdout, _, err := execute(t, "plan", "--domain", "Data Science")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream_unavailable")
	assert.Empty(t, stdout)
}

func TestPlanRequiresDomain(t *testing.T) {
	setupEnv(t)

	_, _, err := execute(t, "plan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain")
}

func TestCatalogList(t *testing.T) {
	setupEnv(t)

	stdout, _, err := execute(t, "catalog", "list", "--domain", "web development")
	require.NoError(t, err)

	var got []models.Course
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ID)
}

func TestCatalogTags(t *testing.T) {
	setupEnv(t)

	stdout, _, err := execute(t, "catalog", "tags")
	require.NoError(t, err)

	var got []string
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, []string{"html", "pandas", "python", "sql"}, got)
}

func TestCatalogImportRequiresDatabase(t *testing.T) {
	setupEnv(t)

	_, _, err := execute(t, "catalog", "import", "--file", "courses.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_ENABLED")
}

func TestToken(t *testing.T) {
	setupEnv(t)

	_, _, err := execute(t, "token", "--user-id", "9")
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "secret")
	stdout, _, err := execute(t, "token", "--user-id", "9", "--ttl", "1h")
	require.NoError(t, err)

	var got tokenOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))

	claims, err := auth.NewTokenManager("secret", "learning-path", time.Hour).ParseAccessToken(got.AccessToken)
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, 9, userID)
}
