package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovefi-matcher/internal/common/config"
	"lovefi-matcher/internal/common/logger"
	"lovefi-matcher/internal/compatibility"
	"lovefi-matcher/internal/server"
)

// ==========================
// Test Helper Functions
// ==========================

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// ==========================
// Commands
// ==========================

func TestScore_RESTModeJSON(t *testing.T) {
	a := writeFile(t, "a.json", `{"name":"Alice","age":25,"interests":["hiking","reading"],"location":"New York"}`)
	b := writeFile(t, "b.json", `{"name":"Bob","age":25,"interests":["hiking","music"],"location":"New York"}`)

	out, err := run(t, "score", "--a", a, "--b", b, "--mode", "rest", "-o", "json")
	require.NoError(t, err)

	var result compatibility.ScoreResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, compatibility.ModeREST, result.Mode)
	assert.InDelta(t, 100.0, result.OverallScore, 1e-9)
}

func TestScore_DefaultsToMessageModeTable(t *testing.T) {
	a := writeFile(t, "a.json", `{}`)
	b := writeFile(t, "b.json", `{}`)

	out, err := run(t, "score", "--a", a, "--b", b)
	require.NoError(t, err)
	assert.Contains(t, out, "Mode:    message")
	// same default age and empty locations; no interests
	assert.Contains(t, out, "Overall: 50.0/100")
	assert.Contains(t, out, "FACTOR")
}

func TestScore_Pair(t *testing.T) {
	pair := writeFile(t, "pair.json", `{"name1":"A","age1":30,"location1":"Chicago","name2":"B","age2":40,"location2":"Chicago","preferences1":{"max_age_diff":20}}`)

	out, err := run(t, "score", "--pair", pair, "--mode", "rest", "-o", "json")
	require.NoError(t, err)

	var result compatibility.ScoreResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	// max of (20, default 10) is 20: age 0.5*30 + location 20
	assert.InDelta(t, 35.0, result.OverallScore, 1e-9)
}

func TestScore_Server(t *testing.T) {
	srv, err := server.New(config.ServerConfig{},
		config.ScoringConfig{DefaultMode: "message", RESTMode: "rest"},
		logger.NewNoOpLogger())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	a := writeFile(t, "a.json", `{"name":"Alice","age":25,"interests":["hiking","reading"],"location":"New York"}`)
	b := writeFile(t, "b.json", `{"name":"Bob","age":25,"interests":["hiking","music"],"location":"New York"}`)

	out, err := run(t, "score", "--a", a, "--b", b, "--server", ts.URL, "-o", "json")
	require.NoError(t, err)

	var result compatibility.ScoreResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, compatibility.ModeREST, result.Mode)
	assert.InDelta(t, 100.0, result.OverallScore, 1e-9)

	_, err = run(t, "score", "--a", a, "--b", b, "--server", ts.URL, "--mode", "message")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rest mode")
}

func TestScore_Errors(t *testing.T) {
	valid := writeFile(t, "valid.json", `{"name":"A"}`)
	badAge := writeFile(t, "bad.json", `{"age":-3}`)
	negPref := writeFile(t, "neg.json", `{"preferences":{"max_age_diff":-1}}`)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no profiles", args: []string{"score"}, wantErr: "--pair is required"},
		{name: "only one profile", args: []string{"score", "--a", valid}, wantErr: "b"},
		{name: "pair and profile", args: []string{"score", "--a", valid, "--b", valid, "--pair", valid}, wantErr: "pair"},
		{name: "missing file", args: []string{"score", "--a", "/nonexistent.json", "--b", valid}, wantErr: "read profile"},
		{name: "invalid profile", args: []string{"score", "--a", badAge, "--b", valid}, wantErr: "PROFILE_VALIDATION_FAILED"},
		{name: "unknown mode", args: []string{"score", "--a", valid, "--b", valid, "--mode", "fast"}, wantErr: "fast"},
		{name: "negative max_age_diff", args: []string{"score", "--a", negPref, "--b", valid, "--mode", "rest"}, wantErr: "max_age_diff"},
		{name: "bad output format", args: []string{"score", "--a", valid, "--b", valid, "-o", "yaml"}, wantErr: "unsupported output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestModes(t *testing.T) {
	out, err := run(t, "modes")
	require.NoError(t, err)
	assert.Contains(t, out, "message")
	assert.Contains(t, out, "tiered")
	assert.Contains(t, out, "0.30/0.50/0.20")

	out, err = run(t, "modes", "-o", "json")
	require.NoError(t, err)
	var cfgs []compatibility.Configuration
	require.NoError(t, json.Unmarshal([]byte(out), &cfgs))
	assert.Len(t, cfgs, 2)
}

func TestVersion(t *testing.T) {
	SetVersionInfo("1.2.3", "abc", "today")
	t.Cleanup(func() { SetVersionInfo("dev", "unknown", "unknown") })

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "matchctl 1.2.3")
}

func TestZapLevel(t *testing.T) {
	assert.Equal(t, "debug", zapLevel(true))
	assert.Equal(t, "warn", zapLevel(false))
}
