package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

const unreachableRemote = "http://127.0.0.1:1"

// testEnv points config at a fresh sqlite file and returns its directory.
func testEnv(t *testing.T, remoteURL string) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("APP_STORAGE_DRIVER", "sqlite")
	t.Setenv("APP_STORAGE_SQLITE_PATH", filepath.Join(dir, "quotes.db"))
	t.Setenv("APP_REMOTE_BASE_URL", remoteURL)
	t.Setenv("APP_LOG_LEVEL", "error")
	t.Setenv("APP_SYNC_PUSH_ON_ADD", "false")
	t.Setenv("APP_CLIENT_RETRY_MAX_ATTEMPTS", "1")

	return dir
}

type result struct {
	stdout string
	stderr string
	err    error
}

func run(stdin string, args ...string) result {
	root := NewApp(BuildInfo{Version: "1.2.3", Commit: "abc"}).NewRootCommand()

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())

	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func TestVersion(t *testing.T) {
	res := run("", "--version")

	require.NoError(t, res.err)
	assert.Equal(t, "quotesync 1.2.3\n", res.stdout)
}

func TestUnknownFormat(t *testing.T) {
	testEnv(t, unreachableRemote)

	res := run("", "list", "--format", "yaml")

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), `unknown format "yaml"`)
}

func TestInvalidConfig(t *testing.T) {
	testEnv(t, unreachableRemote)
	t.Setenv("APP_STORAGE_DRIVER", "floppy")

	res := run("", "list")

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid config")
}

func TestList_SeedQuotes(t *testing.T) {
	testEnv(t, unreachableRemote)

	res := run("", "list")
	require.NoError(t, res.err)

	for _, q := range domain.DefaultQuotes() {
		assert.Contains(t, res.stdout, "["+q.Category+"] "+q.Text)
	}
}

func TestList_EmptyStore(t *testing.T) {
	testEnv(t, unreachableRemote)
	t.Setenv("APP_STORE_SEED_DEFAULTS", "false")

	res := run("", "list")

	require.NoError(t, res.err)
	assert.Equal(t, "No quotes found.\n", res.stdout)
}

func TestAddThenList(t *testing.T) {
	testEnv(t, unreachableRemote)

	res := run("", "add", "--text", "  Ship it.  ", "--category", "Work")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "info: "+app.MessageQuoteAdded)

	res = run("", "list", "--category", "Work", "-o", "json")
	require.NoError(t, res.err)

	var quotes []dto.QuoteResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &quotes))
	require.Len(t, quotes, 1)
	assert.Equal(t, "Ship it.", quotes[0].Text)
	assert.Equal(t, "Work", quotes[0].Category)
	assert.NotEmpty(t, quotes[0].ID)

	res = run("", "list", "--category", "all")
	require.NoError(t, res.err)
	assert.Equal(t, len(domain.DefaultQuotes())+1, strings.Count(res.stdout, "\n"))
}

func TestAdd_Errors(t *testing.T) {
	testEnv(t, unreachableRemote)

	res := run("", "add", "--text", "Only text")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), `"category" not set`)

	res = run("", "add", "--text", " ", "--category", "Work")
	require.Error(t, res.err)
	assert.True(t, domain.IsValidation(res.err))

	existing := domain.DefaultQuotes()[0]
	res = run("", "add", "--text", existing.Text, "--category", "Other")
	require.Error(t, res.err)
	assert.True(t, domain.IsConflict(res.err))
}

func TestExportImport_RoundTrip(t *testing.T) {
	dir := testEnv(t, unreachableRemote)
	file := filepath.Join(dir, "quotes.json")

	require.NoError(t, run("", "add", "-t", "Exported.", "-c", "Work").err)

	res := run("", "export", "--out", file)
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "exported 4 quotes")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {"), "indented by two spaces")

	res = run("", "import", file)
	require.NoError(t, res.err)
	assert.Equal(t, "No new quotes to import.\n", res.stdout)

	// A second store without seed quotes takes everything.
	t.Setenv("APP_STORAGE_SQLITE_PATH", filepath.Join(dir, "other.db"))
	t.Setenv("APP_STORE_SEED_DEFAULTS", "false")

	res = run("", "import", file)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "imported 4, skipped 0")
	assert.Contains(t, res.stdout, "info: "+app.MessageQuotesImported)

	res = run("", "export")
	require.NoError(t, res.err)
	assert.JSONEq(t, string(data), res.stdout)
}

func TestImport_Stdin(t *testing.T) {
	testEnv(t, unreachableRemote)

	res := run(`[{"text":"From stdin","category":"Pipe"}]`, "import", "-", "-o", "json")
	require.NoError(t, res.err)
	assert.JSONEq(t, `{"added":1,"skipped":0}`, res.stdout)
}

func TestImport_Errors(t *testing.T) {
	dir := testEnv(t, unreachableRemote)

	res := run("", "import", filepath.Join(dir, "missing.json"))
	require.Error(t, res.err)
	assert.True(t, domain.IsNotFound(res.err))

	res = run(`[{"text":"ok","category":"A"},{"text":"","category":"B"}]`, "import", "-")
	require.Error(t, res.err)
	assert.True(t, domain.IsValidation(res.err))

	res = run("", "list", "-c", "A")
	require.NoError(t, res.err)
	assert.Equal(t, "No quotes found.\n", res.stdout, "invalid document adds nothing")

	res = run("", "import")
	require.Error(t, res.err)
}

func TestSync(t *testing.T) {
	seed := domain.DefaultQuotes()[0]

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "body": seed.Text, "category": "Remote"},
			{"id": 2, "body": "Fresh from the server", "category": "Tech"},
			{"id": 3, "body": ""},
		})
	}))
	defer server.Close()

	testEnv(t, server.URL)

	res := run("", "sync")
	require.NoError(t, res.err)
	assert.Equal(t, "fetched 2, added 1, updated 1, conflicts 1\n", res.stdout)
	assert.Contains(t, res.stderr, "conflict: "+domain.Conflict{Text: seed.Text}.Message())
	assert.Contains(t, res.stderr, "info: "+app.MessageQuotesAdded)

	res = run("", "list", "-c", "Remote")
	require.NoError(t, res.err)
	assert.Equal(t, "[Remote] "+seed.Text+"\n", res.stdout)

	res = run("", "sync", "-o", "json")
	require.NoError(t, res.err)

	var body dto.SyncResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &body))
	assert.Equal(t, 2, body.Fetched)
	assert.Zero(t, body.Added)
	assert.False(t, body.Saved)
	assert.Empty(t, body.Conflicts)
}

func TestSync_RemoteDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	testEnv(t, server.URL)

	res := run("", "sync")

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "sync failed")
	assert.True(t, domain.IsUnavailable(res.err))
	assert.NotContains(t, res.stderr, "info: ")
}
