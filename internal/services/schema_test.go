package services

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-reviewer/internal/models"
)

func validReviewJSON() map[string]any {
	return map[string]any{
		"match_score":              82,
		"ats_score":                74,
		"persona_name":             "The 'Iron Man' of Software Architecture",
		"persona_description":      "You build complex systems from the ground up.",
		"persona_emoji":            "🤖",
		"correction_feedback":      "The rewrites quantify impact and mirror the job's keywords.",
		"optimization_suggestions": []any{"Get a Kubernetes certification", "Lead a migration", "Mentor juniors"},
		"ats_suggestions":          []any{"Missing keywords: gRPC, Terraform", "Remove the two-column layout"},
		"suggested_job_roles": []any{
			map[string]any{"role": "Senior Backend Engineer", "score": 85},
			map[string]any{"role": "Platform Engineer", "score": 72},
			map[string]any{"role": "SRE", "score": 64},
		},
		"corrected_cv_summary":    "Backend engineer with 6 years of Go.",
		"corrected_cv_experience": "- Reduced API latency by 30%",
	}
}

func encode(t *testing.T, v map[string]any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestReviewSchema_MatchesResultModel(t *testing.T) {
	schema, err := NewReviewSchema()
	require.NoError(t, err)

	typ := reflect.TypeOf(models.ReviewResult{})
	var tags []string
	for i := 0; i < typ.NumField(); i++ {
		tags = append(tags, strings.Split(typ.Field(i).Tag.Get("json"), ",")[0])
	}

	assert.ElementsMatch(t, schema.FieldNames(), tags)
}

func TestNewOutputSchema_RejectsBadFields(t *testing.T) {
	_, err := NewOutputSchema(nil)
	assert.Error(t, err)

	_, err = NewOutputSchema([]SchemaField{{Name: "a", Type: FieldString}, {Name: "a", Type: FieldString}})
	assert.Error(t, err)

	_, err = NewOutputSchema([]SchemaField{{Type: FieldString}})
	assert.Error(t, err)
}

func TestFormatInstructions_ListsEveryField(t *testing.T) {
	schema, err := NewReviewSchema()
	require.NoError(t, err)

	instructions := schema.FormatInstructions()
	assert.True(t, strings.HasPrefix(instructions, "The output should be a markdown code snippet"))
	for _, f := range schema.Fields() {
		assert.Contains(t, instructions, `"`+f.Name+`": `+string(f.Type))
	}
}

func TestParse_Valid(t *testing.T) {
	schema, err := NewReviewSchema()
	require.NoError(t, err)

	result, err := schema.Parse(encode(t, validReviewJSON()))
	require.NoError(t, err)

	assert.Equal(t, 82, result.MatchScore)
	assert.Equal(t, 74, result.ATSScore)
	assert.Equal(t, "🤖", result.PersonaEmoji)
	assert.Len(t, result.OptimizationSuggestions, 3)
	target, ok := result.TargetRole()
	require.True(t, ok)
	assert.Equal(t, "Senior Backend Engineer", target.Role)
	assert.Len(t, result.AlternativeRoles(), 2)
}

func TestParse_StripsMarkdownFenceAndProse(t *testing.T) {
	schema, err := NewReviewSchema()
	require.NoError(t, err)

	raw := "Here is the analysis:\n```json\n" + encode(t, validReviewJSON()) + "\n```\nGood luck!"
	result, err := schema.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 82, result.MatchScore)

	doc := validReviewJSON()
	doc["correction_feedback"] = "Use ```json blocks``` carefully"
	result, err = schema.Parse("```json\n" + encode(t, doc) + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "Use ```json blocks``` carefully", result.CorrectionFeedback, "fences inside values are kept")
}

func TestParse_IgnoresExtraFields(t *testing.T) {
	schema, err := NewReviewSchema()
	require.NoError(t, err)

	doc := validReviewJSON()
	doc["unexpected"] = "value"

	result, err := schema.Parse(encode(t, doc))
	require.NoError(t, err)
	assert.Equal(t, 74, result.ATSScore)
}

func TestParse_Failures(t *testing.T) {
	schema, err := NewReviewSchema()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(map[string]any)
		raw    string
	}{
		{name: "empty", raw: "   "},
		{name: "not json", raw: "I cannot help with that."},
		{name: "truncated", raw: `{"match_score": 80, "ats_score": `},
		{name: "missing field", mutate: func(m map[string]any) { delete(m, "persona_name") }},
		{name: "score as string", mutate: func(m map[string]any) { m["match_score"] = "eighty" }},
		{name: "score above range", mutate: func(m map[string]any) { m["ats_score"] = 140 }},
		{name: "score below range", mutate: func(m map[string]any) { m["match_score"] = -3 }},
		{name: "suggestions not a list", mutate: func(m map[string]any) { m["ats_suggestions"] = "add keywords" }},
		{name: "suggestion not a string", mutate: func(m map[string]any) { m["ats_suggestions"] = []any{1, 2} }},
		{name: "too few optimization suggestions", mutate: func(m map[string]any) { m["optimization_suggestions"] = []any{"one"} }},
		{name: "too few roles", mutate: func(m map[string]any) {
			m["suggested_job_roles"] = []any{map[string]any{"role": "Backend Engineer", "score": 80}}
		}},
		{name: "role without score", mutate: func(m map[string]any) {
			m["suggested_job_roles"] = []any{
				map[string]any{"role": "A"}, map[string]any{"role": "B", "score": 1}, map[string]any{"role": "C", "score": 2},
			}
		}},
		{name: "role score out of range", mutate: func(m map[string]any) {
			m["suggested_job_roles"] = []any{
				map[string]any{"role": "A", "score": 101}, map[string]any{"role": "B", "score": 1}, map[string]any{"role": "C", "score": 2},
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.raw
			if tt.mutate != nil {
				doc := validReviewJSON()
				tt.mutate(doc)
				raw = encode(t, doc)
			}

			result, err := schema.Parse(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSchemaParseFailure)
			assert.Nil(t, result)
		})
	}
}
