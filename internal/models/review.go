package models

// ReviewResult is the structured report produced for one CV and job
// description. Field names match the output schema used in the prompt.
type ReviewResult struct {
	MatchScore              int             `json:"match_score"`
	ATSScore                int             `json:"ats_score"`
	PersonaName             string          `json:"persona_name"`
	PersonaDescription      string          `json:"persona_description"`
	PersonaEmoji            string          `json:"persona_emoji"`
	CorrectionFeedback      string          `json:"correction_feedback"`
	OptimizationSuggestions []string        `json:"optimization_suggestions"`
	ATSSuggestions          []string        `json:"ats_suggestions"`
	SuggestedJobRoles       []SuggestedRole `json:"suggested_job_roles"`
	CorrectedCVSummary      string          `json:"corrected_cv_summary"`
	CorrectedCVExperience   string          `json:"corrected_cv_experience"`
}

type SuggestedRole struct {
	Role  string `json:"role"`
	Score int    `json:"score"`
}

// TargetRole returns the role analysed against the supplied job description.
func (r *ReviewResult) TargetRole() (SuggestedRole, bool) {
	if r == nil || len(r.SuggestedJobRoles) == 0 {
		return SuggestedRole{}, false
	}
	return r.SuggestedJobRoles[0], true
}

// AlternativeRoles returns every suggested role after the target role.
func (r *ReviewResult) AlternativeRoles() []SuggestedRole {
	if r == nil || len(r.SuggestedJobRoles) < 2 {
		return nil
	}
	return r.SuggestedJobRoles[1:]
}

// HasPersona reports whether all three persona fields are populated.
func (r *ReviewResult) HasPersona() bool {
	return r != nil && r.PersonaName != "" && r.PersonaDescription != "" && r.PersonaEmoji != ""
}
