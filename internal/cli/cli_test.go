package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leaguesJSON = `[
  {
    "Title": "Twenty Thousand Leagues Under the Sea",
    "ISBN": "9780000528531",
    "Content": [
      {"Page": 31, "Line": 8, "Text": "now simply went on by her own momentum.  The dark-"},
      {"Page": 31, "Line": 9, "Text": "ness was then profound; and however good the Canadian's"},
      {"Page": 31, "Line": 10, "Text": "eyes were, I asked myself how he had managed to see, and"}
    ]
  }
]`

const leaguesYAML = `- Title: Twenty Thousand Leagues Under the Sea
  ISBN: "9780000528531"
  Content:
    - Page: 31
      Line: 9
      Text: "ness was then profound; and however good the Canadian's"
`

// setupEnv points the database at a temp dir and returns a corpus directory
func setupEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("BOOKSEARCH_DB_PATH", filepath.Join(t.TempDir(), "db", "booksearch.db"))
	t.Setenv("BOOKSEARCH_LOG_LEVEL", "ERROR")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leagues.json"), []byte(leaguesJSON), 0644))
	return dir
}

// runCmd executes a fresh command tree and returns its stdout
func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	a := &app{version: "test-version", buildTime: "2026-01-01"}
	defer a.close()

	cmd := newRootCmd(a)
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd_HasCommands(t *testing.T) {
	cmd := newRootCmd(&app{})

	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "search", "import", "list", "status", "delete", "reset", "version"} {
		assert.Contains(t, names, want)
	}

	flag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag, "config flag should exist")
	assert.Equal(t, "", flag.DefValue)
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "", "version")
	require.NoError(t, err)

	assert.Contains(t, out, "booksearch version test-version")
	assert.Contains(t, out, "Build Time: 2026-01-01")
	assert.Contains(t, out, "SQLite Driver:")
}

func TestVersionCmd_IgnoresBadConfig(t *testing.T) {
	_, err := runCmd(t, "", "--config", "/nonexistent/booksearch.yaml", "version")
	assert.NoError(t, err)
}

func TestRootCmd_BadConfig(t *testing.T) {
	setupEnv(t)

	_, err := runCmd(t, "", "--config", "/nonexistent/booksearch.yaml", "list")
	assert.Error(t, err)
}

func TestSearchCmd_File(t *testing.T) {
	dir := setupEnv(t)
	file := filepath.Join(dir, "leagues.json")

	tests := []struct {
		name     string
		term     string
		contains []string
	}{
		{"hyphen fragment", "dark-", []string{"9780000528531", "31", "8", "1 match(es) in 3 lines across 1 book(s)"}},
		{"joined word", "darkness", []string{`No matches for "darkness".`, "0 match(es)"}},
		{"case sensitive", "canadian's", []string{"No matches"}},
		{"empty term", "", []string{"3 match(es)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCmd(t, "", "search", "--file", file, tt.term)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestSearchCmd_JSON(t *testing.T) {
	dir := setupEnv(t)

	out, err := runCmd(t, "", "search", "--json", "-f", filepath.Join(dir, "leagues.json"), "the")
	require.NoError(t, err)
	assert.JSONEq(t, `{"SearchTerm": "the", "Results": [{"ISBN": "9780000528531", "Page": 31, "Line": 9}]}`, out)

	out, err = runCmd(t, "", "search", "--json", "-f", filepath.Join(dir, "leagues.json"), "nowhere")
	require.NoError(t, err)
	assert.JSONEq(t, `{"SearchTerm": "nowhere", "Results": []}`, out)
}

func TestSearchCmd_MultipleFilesKeepOrder(t *testing.T) {
	dir := setupEnv(t)
	second := filepath.Join(dir, "second.json")
	require.NoError(t, os.WriteFile(second, []byte(`[{"Title": "B", "ISBN": "2", "Content": [{"Page": 1, "Line": 1, "Text": "the end"}]}]`), 0644))

	out, err := runCmd(t, "", "search", "--json", "-f", second, "-f", filepath.Join(dir, "leagues.json"), "the")
	require.NoError(t, err)
	assert.JSONEq(t, `{"SearchTerm": "the", "Results": [
		{"ISBN": "2", "Page": 1, "Line": 1},
		{"ISBN": "9780000528531", "Page": 31, "Line": 9}
	]}`, out)
}

func TestSearchCmd_Stdin(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, leaguesYAML, "search", "--json", "--file", "-", "--format", "yaml", "Canadian's")
	require.NoError(t, err)
	assert.JSONEq(t, `{"SearchTerm": "Canadian's", "Results": [{"ISBN": "9780000528531", "Page": 31, "Line": 9}]}`, out)

	_, err = runCmd(t, leaguesYAML, "search", "--file", "-", "--format", "xml", "x")
	assert.Error(t, err)
}

func TestSearchCmd_StdinOnlyOnce(t *testing.T) {
	dir := setupEnv(t)

	_, err := runCmd(t, leaguesJSON, "search", "-f", "-", "-f", filepath.Join(dir, "leagues.json"), "-f", "-", "the")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only once")

	out, err := runCmd(t, leaguesJSON, "search", "--json", "-f", "-", "-f", filepath.Join(dir, "leagues.json"), "the")
	require.NoError(t, err)
	assert.JSONEq(t, `{"SearchTerm": "the", "Results": [
		{"ISBN": "9780000528531", "Page": 31, "Line": 9},
		{"ISBN": "9780000528531", "Page": 31, "Line": 9}
	]}`, out)
}

func TestResetCmd(t *testing.T) {
	dir := setupEnv(t)

	_, err := runCmd(t, "", "import", "verne", dir)
	require.NoError(t, err)

	_, err = runCmd(t, "", "reset")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	out, err := runCmd(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "verne")

	out, err = runCmd(t, "", "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Database reset to schema 1.0.0")

	out, err = runCmd(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No corpora imported.")

	// The database accepts imports again
	_, err = runCmd(t, "", "import", "verne", dir)
	assert.NoError(t, err)
}

func TestSearchCmd_Errors(t *testing.T) {
	dir := setupEnv(t)
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"ISBN": "1", "Content": [{"Page": 1, "Line": 1}]}]`), 0644))

	tests := []struct {
		name string
		args []string
	}{
		{"no term", []string{"search", "--file", bad}},
		{"no corpus", []string{"search", "term"}},
		{"file and name", []string{"search", "--file", bad, "--name", "x", "term"}},
		{"invalid corpus file", []string{"search", "--file", bad, "term"}},
		{"missing file", []string{"search", "--file", filepath.Join(dir, "missing.json"), "term"}},
		{"unknown corpus", []string{"search", "--name", "missing", "term"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestImportCmd_Lifecycle(t *testing.T) {
	dir := setupEnv(t)

	out, err := runCmd(t, "", "import", "verne", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `Created corpus "verne"`)
	assert.Contains(t, out, "Files:   1 parsed, 0 failed, 0 skipped")
	assert.Contains(t, out, "Lines:   3")

	out, err = runCmd(t, "", "import", "verne", filepath.Join(dir, "leagues.json"))
	require.NoError(t, err)
	assert.Contains(t, out, `Updated corpus "verne"`)

	out, err = runCmd(t, "", "search", "--json", "--name", "verne", "dark-")
	require.NoError(t, err)
	assert.JSONEq(t, `{"SearchTerm": "dark-", "Results": [{"ISBN": "9780000528531", "Page": 31, "Line": 8}]}`, out)

	out, err = runCmd(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "verne")

	out, err = runCmd(t, "", "status", "verne")
	require.NoError(t, err)
	assert.Contains(t, out, "Corpus:      verne")
	assert.Contains(t, out, "Books:       1 (0 empty)")
	assert.Contains(t, out, "schema 1.0.0")

	out, err = runCmd(t, "", "delete", "verne")
	require.NoError(t, err)
	assert.Contains(t, out, `Deleted corpus "verne"`)

	_, err = runCmd(t, "", "status", "verne")
	assert.Error(t, err)

	_, err = runCmd(t, "", "delete", "verne")
	assert.Error(t, err)

	out, err = runCmd(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No corpora imported.")
}

func TestImportCmd_JSON(t *testing.T) {
	dir := setupEnv(t)

	out, err := runCmd(t, "", "import", "--json", "--workers", "2", "verne", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"CorpusName": "verne"`)
	assert.Contains(t, out, `"LinesImported": 3`)

	out, err = runCmd(t, "", "list", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"Name": "verne"`)

	out, err = runCmd(t, "", "status", "--json", "verne")
	require.NoError(t, err)
	assert.Contains(t, out, `"LinesCount": 3`)
}

func TestImportCmd_Errors(t *testing.T) {
	dir := setupEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{not json`), 0644))

	_, err := runCmd(t, "", "import", "verne", dir, "--strict")
	assert.Error(t, err)

	_, err = runCmd(t, "", "import", "verne", filepath.Join(dir, "missing"))
	assert.Error(t, err)

	_, err = runCmd(t, "", "import", "verne")
	assert.Error(t, err)

	// Without --strict the valid file is imported
	out, err := runCmd(t, "", "import", "verne", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 parsed, 1 failed")
}

func TestMustMakeLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := mustMakeLogger("WARN", buf)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	assert.Panics(t, func() { mustMakeLogger("TRACE", buf) })
}
