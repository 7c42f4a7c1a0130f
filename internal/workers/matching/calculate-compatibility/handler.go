// internal/workers/matching/calculate-compatibility/handler.go
package calculatecompatibility

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"lovefi-matcher/internal/common/errors"
	"lovefi-matcher/internal/common/logger"
	"lovefi-matcher/internal/common/metrics"
	"lovefi-matcher/internal/common/observability"
	"lovefi-matcher/internal/common/validation"
	"lovefi-matcher/internal/compatibility"
	"lovefi-matcher/internal/models"
)

const (
	TaskType = "calculate-compatibility"

	profileCacheKeyPrefix = "dating:profile:"
)

const profileQuery = `
		SELECT name, age, interests, location, max_age_diff
		FROM dating_profiles WHERE id = $1`

type Handler struct {
	config       *Config
	db           *sql.DB
	redis        *redis.Client
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
}

// NewHandler builds the worker. db and redis may be nil, in which case only
// inline profiles can be scored.
func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig(nil)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		redis:        redis,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log).WithMaxRetries(config.MaxRetries),
	}
}

// WithObservability enables tracing and otel metrics for executed jobs.
func (h *Handler) WithObservability(obs *observability.Observability) *Handler {
	h.obs = obs
	return h
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	done := metrics.TrackJob(TaskType)
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, errors.NewParseError(err), done, start)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err, done, start)
		return
	}

	h.completeJob(ctx, client, job, output)
	done("")
	h.obs.RecordJobProcessed(ctx, "completed")
	h.obs.RecordJobDuration(ctx, time.Since(start), "completed")
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, done func(string), start time.Time) {
	stdErr := errors.Normalize(err)
	done(string(stdErr.Code))
	metrics.RecordScoreError(metrics.TransportWorker, string(stdErr.Code))
	h.obs.RecordJobProcessed(ctx, "failed")
	h.obs.RecordJobDuration(ctx, time.Since(start), "failed")
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	mode := h.config.DefaultMode
	if input.Mode != "" {
		parsed, err := compatibility.ParseMode(input.Mode)
		if err != nil {
			return nil, errors.NewScoringConfigurationError(err)
		}
		mode = parsed
	}

	ctx, span := h.obs.StartSpan(ctx, "calculate-compatibility",
		attribute.String("mode", string(mode)))
	defer span.End()

	profileA, err := h.resolveProfile(ctx, "profileA", input.ProfileA, input.ProfileAID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	profileB, err := h.resolveProfile(ctx, "profileB", input.ProfileB, input.ProfileBID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result, err := compatibility.Score(profileA.ToProfile(), profileB.ToProfile(), mode)
	if err != nil {
		span.RecordError(err)
		return nil, errors.NewScoringConfigurationError(err)
	}

	metrics.RecordScore(string(mode), metrics.TransportWorker, result.OverallScore)
	h.obs.RecordScore(ctx, string(mode), metrics.TransportWorker)

	h.logger.Info("compatibility calculated", map[string]interface{}{
		"profileA": describe(profileA),
		"profileB": describe(profileB),
		"mode":     string(mode),
		"score":    result.OverallScore,
	})

	return &Output{
		Score:                result.OverallScore,
		Explanation:          result.Explanation,
		CompatibilityFactors: result.Factors,
		Recommendations:      result.Recommendations,
		Mode:                 string(result.Mode),
	}, nil
}

// resolveProfile prefers the inline document and falls back to the directory.
func (h *Handler) resolveProfile(ctx context.Context, field string, raw json.RawMessage, id string) (*models.ProfilePayload, error) {
	if isPresent(raw) {
		if res := validation.ValidateProfile(raw); !res.Valid {
			return nil, errors.NewProfileValidationError(fmt.Sprintf("%s: %s", field, res.Error())).
				WithMetadata("field", field)
		}
		var payload models.ProfilePayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, errors.NewProfileValidationError(fmt.Sprintf("%s: %v", field, err))
		}
		return &payload, nil
	}

	if id != "" {
		return h.getProfile(ctx, id)
	}

	return nil, errors.NewProfileValidationError(fmt.Sprintf("%s or %sId is required", field, field)).
		WithMetadata("field", field)
}

func isPresent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func (h *Handler) getProfile(ctx context.Context, profileID string) (*models.ProfilePayload, error) {
	cacheKey := profileCacheKeyPrefix + profileID

	if h.redis != nil {
		val, err := h.redis.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			var profile models.ProfilePayload
			if jsonErr := json.Unmarshal([]byte(val), &profile); jsonErr == nil {
				metrics.ProfileCacheLookups.WithLabelValues("hit").Inc()
				return &profile, nil
			}
			metrics.ProfileCacheLookups.WithLabelValues("corrupt").Inc()
		case stderrors.Is(err, redis.Nil):
			metrics.ProfileCacheLookups.WithLabelValues("miss").Inc()
		default:
			cacheErr := errors.NewCacheUnavailableError(err)
			metrics.ProfileCacheLookups.WithLabelValues("error").Inc()
			h.logger.Warn("profile cache unavailable", map[string]interface{}{
				"profileId": profileID,
				"errorCode": string(cacheErr.Code),
				"error":     cacheErr.Details,
			})
		}
	}

	if h.db == nil {
		return nil, errors.NewProfileLookupFailedError(profileID, stderrors.New("profile directory not configured"))
	}

	profile, err := h.queryProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if h.redis != nil {
		data, _ := json.Marshal(profile)
		if err := h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL).Err(); err != nil {
			h.logger.Warn("failed to cache profile", map[string]interface{}{
				"profileId": profileID,
				"error":     err.Error(),
			})
		}
	}

	return profile, nil
}

func (h *Handler) queryProfile(ctx context.Context, profileID string) (*models.ProfilePayload, error) {
	var (
		name       sql.NullString
		age        sql.NullInt64
		interests  []byte
		location   sql.NullString
		maxAgeDiff sql.NullInt64
	)

	err := h.db.QueryRowContext(ctx, profileQuery, profileID).
		Scan(&name, &age, &interests, &location, &maxAgeDiff)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		return nil, errors.NewProfileNotFoundError(profileID)
	case err != nil && (stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded)):
		// drivers report a cancelled statement rather than the context error
		return nil, errors.NewProfileLookupTimeoutError(profileID)
	case err != nil:
		return nil, errors.NewProfileLookupFailedError(profileID, err)
	}

	profile := &models.ProfilePayload{
		ID:       profileID,
		Name:     name.String,
		Location: location.String,
	}
	if age.Valid {
		profile.Age = models.IntPtr(int(age.Int64))
	}
	if len(interests) > 0 {
		if err := json.Unmarshal(interests, &profile.Interests); err != nil {
			h.logger.Warn("ignoring malformed interests column", map[string]interface{}{
				"profileId": profileID,
				"error":     err.Error(),
			})
			profile.Interests = nil
		}
	}
	if maxAgeDiff.Valid {
		profile.Preferences = &models.PreferencesPayload{MaxAgeDiff: models.IntPtr(int(maxAgeDiff.Int64))}
	}

	return profile, nil
}

func describe(p *models.ProfilePayload) string {
	if p.ID != "" {
		return p.ID
	}
	return p.Name
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
