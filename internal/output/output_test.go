package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovefi-matcher/internal/compatibility"
)

func sampleResult() *compatibility.ScoreResult {
	return &compatibility.ScoreResult{
		OverallScore: 72.5,
		Mode:         compatibility.ModeMessage,
		Factors: map[compatibility.Factor]compatibility.FactorResult{
			compatibility.FactorLocation:  {CompatibilityScore: 0.8, Reason: "Same city"},
			compatibility.FactorAge:       {CompatibilityScore: 1.0, Reason: "Very close in age"},
			compatibility.FactorInterests: {CompatibilityScore: 0.5, Reason: "Some overlap"},
		},
		Recommendations: []string{"Try hiking together"},
	}
}

func TestTableTo_ScoreResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TableTo(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "Overall: 72.5/100")
	assert.Contains(t, out, "FACTOR")
	assert.Contains(t, out, "Try hiking together")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("age ")), bytes.Index(buf.Bytes(), []byte("location ")))
}

func TestTableTo_Modes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TableTo(&buf, compatibility.Modes()))

	out := buf.String()
	assert.Contains(t, out, "0.25/0.50/0.25")
	assert.Contains(t, out, "0.30/0.50/0.20")
}

func TestTableTo_UnsupportedType(t *testing.T) {
	assert.Error(t, TableTo(&bytes.Buffer{}, 42))
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleResult()))

	var decoded compatibility.ScoreResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.InDelta(t, 72.5, decoded.OverallScore, 1e-9)
	assert.Contains(t, buf.String(), "\n  \"overall_score\"")
}

func TestWrite_UnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, "yaml", sampleResult()))
}
