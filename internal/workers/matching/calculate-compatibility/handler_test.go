// internal/workers/matching/calculate-compatibility/handler_test.go
package calculatecompatibility

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovefi-matcher/internal/common/config"
	"lovefi-matcher/internal/common/errors"
	"lovefi-matcher/internal/common/logger"
	"lovefi-matcher/internal/compatibility"
	"lovefi-matcher/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		CacheTTL:    5 * time.Minute,
		Timeout:     5 * time.Second,
		DefaultMode: compatibility.ModeMessage,
	}
}

func createTestHandler(t *testing.T, db *sql.DB, rdb *redis.Client) *Handler {
	return NewHandler(createTestConfig(), db, rdb, newTestLogger(t))
}

type testLogger struct {
	t        *testing.T
	warnings []map[string]interface{}
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
	tl.warnings = append(tl.warnings, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

func raw(s string) json.RawMessage {
	return json.RawMessage(s)
}

func requireCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok, "expected StandardError, got %T: %v", err, err)
	assert.Equal(t, code, stdErr.Code)
}

var profileColumns = []string{"name", "age", "interests", "location", "max_age_diff"}

// ==========================
// Inline Profile Tests
// ==========================

func TestHandler_Execute_InlineProfiles(t *testing.T) {
	tests := []struct {
		name          string
		input         *Input
		expectedMode  string
		expectedScore float64
	}{
		{
			name: "rest mode perfect match",
			input: &Input{
				ProfileA: raw(`{"name":"Alice","age":25,"interests":["hiking","reading"],"location":"New York"}`),
				ProfileB: raw(`{"name":"Bob","age":25,"interests":["hiking","music"],"location":"New York"}`),
				Mode:     "rest",
			},
			expectedMode:  "rest",
			expectedScore: 100,
		},
		{
			name: "default mode is message",
			input: &Input{
				ProfileA: raw(`{"name":"A","age":28,"interests":["hiking","cooking","chess"],"location":"Brooklyn, New York"}`),
				ProfileB: raw(`{"name":"B","age":31,"interests":["climbing","cooking"],"location":"Manhattan, New York"}`),
			},
			expectedMode:  "message",
			expectedScore: 0.8*25 + 1.0*50 + 0.8*25,
		},
		{
			name: "empty profiles fall back to defaults",
			input: &Input{
				ProfileA: raw(`{}`),
				ProfileB: raw(`{}`),
				Mode:     "MESSAGE",
			},
			// same default age and empty locations match exactly; no interests
			expectedMode:  "message",
			expectedScore: 1.0*25 + 0*50 + 1.0*25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, nil, nil)

			output, err := handler.Execute(context.Background(), tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedMode, output.Mode)
			assert.InDelta(t, tt.expectedScore, output.Score, 1e-9)
			assert.Contains(t, output.Explanation, "Compatibility Analysis")
			assert.Len(t, output.CompatibilityFactors, 3)
			assert.NotEmpty(t, output.Recommendations)
		})
	}
}

func TestHandler_Execute_ConfiguredDefaultMode(t *testing.T) {
	cfg := createTestConfig()
	cfg.DefaultMode = compatibility.ModeREST
	handler := NewHandler(cfg, nil, nil, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		ProfileA: raw(`{"age":30}`),
		ProfileB: raw(`{"age":35}`),
	})

	require.NoError(t, err)
	assert.Equal(t, "rest", output.Mode)
	assert.InDelta(t, 0.5, output.CompatibilityFactors[compatibility.FactorAge].CompatibilityScore, 1e-9)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
		code  errors.ErrorCode
	}{
		{
			name:  "unknown mode",
			input: &Input{ProfileA: raw(`{}`), ProfileB: raw(`{}`), Mode: "speed-dating"},
			code:  errors.ErrCodeScoringConfigurationInvalid,
		},
		{
			name:  "negative max_age_diff in rest mode",
			input: &Input{ProfileA: raw(`{"preferences":{"max_age_diff":-2}}`), ProfileB: raw(`{}`), Mode: "rest"},
			code:  errors.ErrCodeScoringConfigurationInvalid,
		},
		{
			name:  "negative age",
			input: &Input{ProfileA: raw(`{"age":-1}`), ProfileB: raw(`{}`)},
			code:  errors.ErrCodeProfileValidationFailed,
		},
		{
			name:  "interests of wrong type",
			input: &Input{ProfileA: raw(`{}`), ProfileB: raw(`{"interests":"hiking"}`)},
			code:  errors.ErrCodeProfileValidationFailed,
		},
		{
			name:  "missing profileB",
			input: &Input{ProfileA: raw(`{}`)},
			code:  errors.ErrCodeProfileValidationFailed,
		},
		{
			name:  "null profileA without id",
			input: &Input{ProfileA: raw(`null`), ProfileB: raw(`{}`)},
			code:  errors.ErrCodeProfileValidationFailed,
		},
		{
			name:  "id lookup without directory",
			input: &Input{ProfileAID: "p-1", ProfileB: raw(`{}`)},
			code:  errors.ErrCodeProfileLookupFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, nil, nil)
			output, err := handler.Execute(context.Background(), tt.input)
			assert.Nil(t, output)
			requireCode(t, err, tt.code)
		})
	}
}

func TestHandler_Execute_NegativeMaxAgeDiffIgnoredInMessageMode(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	output, err := handler.Execute(context.Background(), &Input{
		ProfileA: raw(`{"preferences":{"max_age_diff":-2}}`),
		ProfileB: raw(`{}`),
		Mode:     "message",
	})

	require.NoError(t, err)
	assert.Equal(t, "message", output.Mode)
}

// ==========================
// Profile Directory Tests
// ==========================

func TestHandler_Execute_FetchProfilesFromDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	mock.ExpectQuery("SELECT name, age, interests, location, max_age_diff").
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("Alice", 25, []byte(`["hiking","reading"]`), "New York", 10))
	mock.ExpectQuery("SELECT name, age, interests, location, max_age_diff").
		WithArgs("p-2").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("Bob", 25, []byte(`["hiking","music"]`), "New York", nil))

	alice := models.ProfilePayload{
		ID: "p-1", Name: "Alice", Age: models.IntPtr(25),
		Interests: []string{"hiking", "reading"}, Location: "New York",
		Preferences: &models.PreferencesPayload{MaxAgeDiff: models.IntPtr(10)},
	}
	bob := models.ProfilePayload{
		ID: "p-2", Name: "Bob", Age: models.IntPtr(25),
		Interests: []string{"hiking", "music"}, Location: "New York",
	}
	aliceData, _ := json.Marshal(&alice)
	bobData, _ := json.Marshal(&bob)

	redisMock.ExpectGet("dating:profile:p-1").RedisNil()
	redisMock.ExpectSet("dating:profile:p-1", aliceData, 5*time.Minute).SetVal("OK")
	redisMock.ExpectGet("dating:profile:p-2").RedisNil()
	redisMock.ExpectSet("dating:profile:p-2", bobData, 5*time.Minute).SetVal("OK")

	handler := createTestHandler(t, db, redisClient)
	output, err := handler.Execute(context.Background(), &Input{
		ProfileAID: "p-1",
		ProfileBID: "p-2",
		Mode:       "rest",
	})

	require.NoError(t, err)
	assert.InDelta(t, 100.0, output.Score, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_Execute_ProfileFromCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cached := models.ProfilePayload{ID: "p-9", Name: "Cara", Age: models.IntPtr(40), Location: "Chicago"}
	data, _ := json.Marshal(cached)
	require.NoError(t, mr.Set("dating:profile:p-9", string(data)))

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := createTestHandler(t, db, rdb)
	output, err := handler.Execute(context.Background(), &Input{
		ProfileAID: "p-9",
		ProfileB:   raw(`{"name":"Dan","age":40,"location":"Chicago"}`),
	})

	require.NoError(t, err)
	assert.Equal(t, "exact", output.CompatibilityFactors[compatibility.FactorLocation].Metadata["match_type"])
	assert.NoError(t, mock.ExpectationsWereMet(), "cache hit must not touch the database")
}

func TestHandler_Execute_CachesDatabaseResult(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name, age, interests, location, max_age_diff").
		WithArgs("p-3").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("Eve", nil, nil, nil, nil))

	handler := createTestHandler(t, db, rdb)
	_, err = handler.Execute(context.Background(), &Input{
		ProfileAID: "p-3",
		ProfileB:   raw(`{}`),
	})
	require.NoError(t, err)

	assert.True(t, mr.Exists("dating:profile:p-3"))
	ttl := mr.TTL("dating:profile:p-3")
	assert.Equal(t, 5*time.Minute, ttl)

	// second lookup is served from cache
	_, err = handler.Execute(context.Background(), &Input{
		ProfileAID: "p-3",
		ProfileB:   raw(`{}`),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_GetProfile_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name, age, interests, location, max_age_diff").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	handler := createTestHandler(t, db, nil)
	_, err = handler.Execute(context.Background(), &Input{ProfileAID: "missing", ProfileB: raw(`{}`)})

	requireCode(t, err, errors.ErrCodeProfileNotFound)
	assert.False(t, errors.IsRetryableErrorCode(errors.ErrCodeProfileNotFound))
}

func TestHandler_GetProfile_DatabaseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name, age, interests, location, max_age_diff").
		WithArgs("p-1").
		WillReturnError(stderrors.New("connection reset by peer"))

	handler := createTestHandler(t, db, nil)
	_, err = handler.Execute(context.Background(), &Input{ProfileAID: "p-1", ProfileB: raw(`{}`)})

	requireCode(t, err, errors.ErrCodeProfileLookupFailed)
	stdErr, _ := errors.AsStandardError(err)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_GetProfile_CacheErrorFallsBackToDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet("dating:profile:p-5").SetErr(stderrors.New("redis down"))

	mock.ExpectQuery("SELECT name, age, interests, location, max_age_diff").
		WithArgs("p-5").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("Finn", 33, []byte(`["chess"]`), "Houston, Texas", 5))

	payload := models.ProfilePayload{
		ID: "p-5", Name: "Finn", Age: models.IntPtr(33),
		Interests: []string{"chess"}, Location: "Houston, Texas",
		Preferences: &models.PreferencesPayload{MaxAgeDiff: models.IntPtr(5)},
	}
	data, _ := json.Marshal(&payload)
	redisMock.ExpectSet("dating:profile:p-5", data, 5*time.Minute).SetErr(stderrors.New("redis down"))

	log := &testLogger{t: t}
	handler := NewHandler(createTestConfig(), db, redisClient, log)
	output, err := handler.Execute(context.Background(), &Input{
		ProfileAID: "p-5",
		ProfileB:   raw(`{"age":33,"location":"Houston, Texas","interests":["Chess"]}`),
		Mode:       "rest",
	})

	require.NoError(t, err)
	assert.InDelta(t, 100.0, output.Score, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())

	require.NotEmpty(t, log.warnings)
	assert.Equal(t, string(errors.ErrCodeCacheUnavailable), log.warnings[0]["errorCode"])
	assert.Equal(t, "redis down", log.warnings[0]["error"])
}

func TestHandler_GetProfile_CancelledStatementIsTimeout(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name, age, interests, location, max_age_diff").
		WithArgs("p-9").
		WillDelayFor(500 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("Ivy", 30, []byte(`[]`), "Denver", nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	handler := createTestHandler(t, db, nil)
	_, err = handler.Execute(ctx, &Input{ProfileAID: "p-9", ProfileB: raw(`{}`)})

	requireCode(t, err, errors.ErrCodeProfileLookupTimeout)
}

func TestHandler_GetProfile_MalformedInterestsColumn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name, age, interests, location, max_age_diff").
		WithArgs("p-7").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("Gus", 29, []byte(`not json`), "Phoenix", nil))

	handler := createTestHandler(t, db, nil)
	output, err := handler.Execute(context.Background(), &Input{ProfileAID: "p-7", ProfileB: raw(`{"interests":["hiking"]}`)})

	require.NoError(t, err)
	assert.Equal(t, 0, output.CompatibilityFactors[compatibility.FactorInterests].Metadata["direct_matches"])
}

// ==========================
// Config Tests
// ==========================

func TestLoadConfig(t *testing.T) {
	defaults := LoadConfig(nil)
	assert.Equal(t, compatibility.ModeMessage, defaults.DefaultMode)
	assert.Equal(t, 5*time.Minute, defaults.CacheTTL)

	cfg := &config.Config{
		Database: config.DatabaseConfig{Redis: config.RedisConfig{CacheTTL: 60}},
		Scoring:  config.ScoringConfig{DefaultMode: "rest"},
		Workers: map[string]config.WorkerConfig{
			TaskType: {Enabled: true, Timeout: 2500},
		},
	}
	loaded := LoadConfig(cfg)
	assert.Equal(t, time.Minute, loaded.CacheTTL)
	assert.Equal(t, 2500*time.Millisecond, loaded.Timeout)
	assert.Equal(t, compatibility.ModeREST, loaded.DefaultMode)
	assert.Equal(t, 3, loaded.MaxRetries)

	cfg.Workers[TaskType] = config.WorkerConfig{Enabled: true, MaxRetries: 1}
	assert.Equal(t, 1, LoadConfig(cfg).MaxRetries)
}

func TestNewHandler_CapsRetriesAtWorkerMax(t *testing.T) {
	cfg := createTestConfig()
	cfg.MaxRetries = 1
	handler := NewHandler(cfg, nil, nil, newTestLogger(t))

	bpmnErr := handler.errorHandler.ToBPMNError(errors.NewProfileLookupFailedError("p-1", stderrors.New("connection reset")))
	assert.Equal(t, 1, bpmnErr.Retries)
}

func TestIsPresent(t *testing.T) {
	assert.False(t, isPresent(nil))
	assert.False(t, isPresent(raw(" null ")))
	assert.False(t, isPresent(raw("  ")))
	assert.True(t, isPresent(raw(`{}`)))
}
