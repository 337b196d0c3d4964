package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"alfredoptarigan/cv-reviewer/internal/models"
)

type FieldType string

const (
	FieldInteger    FieldType = "integer"
	FieldString     FieldType = "string"
	FieldStringList FieldType = "list[string]"
	FieldRoleList   FieldType = "list[{role: string, score: integer}]"
)

const (
	minScore = 0
	maxScore = 100
)

type SchemaField struct {
	Name        string
	Type        FieldType
	Description string
	// MinItems and MaxItems bound list fields; zero means unbounded.
	MinItems int
	MaxItems int
}

// OutputSchema describes the model's reply. The same value renders the
// prompt's format instructions and validates the reply.
type OutputSchema struct {
	fields   []SchemaField
	compiled *gojsonschema.Schema
}

var reviewFields = []SchemaField{
	{
		Name:        "match_score",
		Type:        FieldInteger,
		Description: "A holistic score from 0-100 on how well the CV aligns with the job description, considering keywords, experience level and required qualifications.",
	},
	{
		Name:        "ats_score",
		Type:        FieldInteger,
		Description: "A score from 0-100 for ATS compatibility. Penalize images, tables, columns and non-standard fonts or headings. Reward keyword density and a standard resume format.",
	},
	{
		Name:        "persona_name",
		Type:        FieldString,
		Description: "A creative, epic yet professional title for the candidate that combines their core skills. Respond in the CV's original language.",
	},
	{
		Name:        "persona_description",
		Type:        FieldString,
		Description: "A 1-2 sentence summary explaining why the candidate fits the persona title, referencing specific skills. Respond in the CV's original language.",
	},
	{
		Name:        "persona_emoji",
		Type:        FieldString,
		Description: "A single emoji that represents the persona's combined core skills.",
	},
	{
		Name:        "correction_feedback",
		Type:        FieldString,
		Description: "The rationale for the rewrites: why the changes improve the CV, linked to the STAR method, impact metrics and alignment with the job description.",
	},
	{
		Name:        "optimization_suggestions",
		Type:        FieldStringList,
		Description: "A list of 3-5 high-level, strategic recommendations for the candidate's career trajectory, going beyond immediate CV fixes.",
		MinItems:    3,
		MaxItems:    5,
	},
	{
		Name:        "ats_suggestions",
		Type:        FieldStringList,
		Description: "A list of concrete actions to improve the ATS score, naming specific missing keywords from the job description and any formatting issues.",
	},
	{
		Name:        "suggested_job_roles",
		Type:        FieldRoleList,
		Description: "Suitable job roles. The first item MUST be the target role from the job description, followed by 2-4 alternative roles. Each item has 'role' (string) and 'score' (integer 0-100).",
		MinItems:    3,
		MaxItems:    5,
	},
	{
		Name:        "corrected_cv_summary",
		Type:        FieldString,
		Description: "A fully rewritten 2-3 sentence professional summary, tailored as an elevator pitch for this role and packed with relevant keywords.",
	},
	{
		Name:        "corrected_cv_experience",
		Type:        FieldString,
		Description: "A rewritten version of the most relevant work experience as 3-4 bullet points, each starting with a strong action verb and including quantifiable results.",
	},
}

// NewReviewSchema returns the schema of the CV review report.
func NewReviewSchema() (*OutputSchema, error) {
	return NewOutputSchema(reviewFields)
}

func NewOutputSchema(fields []SchemaField) (*OutputSchema, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("output schema needs at least one field")
	}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("output schema field without a name")
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("duplicate output schema field %q", f.Name)
		}
		seen[f.Name] = true
	}

	s := &OutputSchema{fields: append([]SchemaField(nil), fields...)}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(s.JSONSchema()))
	if err != nil {
		return nil, fmt.Errorf("failed to compile output schema: %w", err)
	}
	s.compiled = compiled

	return s, nil
}

func (s *OutputSchema) Fields() []SchemaField {
	return append([]SchemaField(nil), s.fields...)
}

func (s *OutputSchema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// JSONSchema renders the schema as a draft-07 JSON Schema document.
func (s *OutputSchema) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s.fields))
	required := make([]any, 0, len(s.fields))

	for _, f := range s.fields {
		properties[f.Name] = fieldSchema(f)
		required = append(required, f.Name)
	}

	return map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func fieldSchema(f SchemaField) map[string]any {
	var prop map[string]any

	switch f.Type {
	case FieldInteger:
		prop = scoreSchema()
	case FieldStringList:
		prop = map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		}
	case FieldRoleList:
		prop = map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"role":  map[string]any{"type": "string", "minLength": 1},
					"score": scoreSchema(),
				},
				"required": []any{"role", "score"},
			},
		}
	default:
		prop = map[string]any{"type": "string"}
	}

	if f.MinItems > 0 {
		prop["minItems"] = f.MinItems
	}
	if f.MaxItems > 0 {
		prop["maxItems"] = f.MaxItems
	}
	prop["description"] = f.Description

	return prop
}

func scoreSchema() map[string]any {
	return map[string]any{
		"type":    "integer",
		"minimum": minScore,
		"maximum": maxScore,
	}
}

// FormatInstructions renders the block appended to the prompt telling the
// model how to shape its reply.
func (s *OutputSchema) FormatInstructions() string {
	var sb strings.Builder

	sb.WriteString("The output should be a markdown code snippet formatted in the following schema, ")
	sb.WriteString("including the leading and trailing \"```json\" and \"```\":\n\n")
	sb.WriteString("```json\n{\n")
	for _, f := range s.fields {
		sb.WriteString(fmt.Sprintf("\t\"%s\": %s  // %s\n", f.Name, f.Type, f.Description))
	}
	sb.WriteString("}\n```")

	return sb.String()
}

// Parse validates the model's raw reply against the schema and decodes it.
// Any mismatch is reported as ErrSchemaParseFailure.
func (s *OutputSchema) Parse(raw string) (*models.ReviewResult, error) {
	jsonStr := strings.TrimSpace(extractJSON(raw))
	if jsonStr == "" {
		return nil, fmt.Errorf("%w: empty response", ErrSchemaParseFailure)
	}

	result, err := s.compiled.Validate(gojsonschema.NewStringLoader(jsonStr))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", ErrSchemaParseFailure, err)
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			problems = append(problems, fmt.Sprintf("%s: %s", field, desc.Description()))
		}
		return nil, fmt.Errorf("%w: %s", ErrSchemaParseFailure, strings.Join(problems, "; "))
	}

	var review models.ReviewResult
	if err := json.Unmarshal([]byte(jsonStr), &review); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaParseFailure, err)
	}

	return &review, nil
}

// extractJSON pulls the JSON object out of text that may be wrapped in
// markdown fences or prose.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}

	return text
}
