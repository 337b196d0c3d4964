package services

import (
	"fmt"
	"strings"
)

const sectionRule = "----------------"

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildReviewPrompt creates the single instruction sent to the model. The
// three inputs are embedded verbatim under labelled sections, followed by the
// schema's format instructions.
func (pb *PromptBuilder) BuildReviewPrompt(jobDescription, retrievedContext, fullCVText, formatInstructions string) string {
	var sb strings.Builder

	sb.WriteString(reviewPreamble)

	writeSection(&sb, "JOB DESCRIPTION", jobDescription)
	writeSection(&sb, "RETRIEVED CV SECTIONS (for initial analysis)", retrievedContext)
	writeSection(&sb, "FULL CV TEXT (for deep analysis, rewriting, and correction)", fullCVText)

	sb.WriteString("**FORMAT INSTRUCTIONS:**\n")
	sb.WriteString("Respond ONLY with JSON in the format below, with no prose before or after it. ")
	sb.WriteString("Keep the tone professional yet encouraging.\n")
	sb.WriteString(formatInstructions)
	sb.WriteString("\n")

	return sb.String()
}

func writeSection(sb *strings.Builder, title, body string) {
	fmt.Fprintf(sb, "**%s:**\n%s\n%s\n%s\n\n", title, sectionRule, body, sectionRule)
}

const reviewPreamble = `You are a world-class career coach and technical recruiter. Analyse the CV below against the job description and give feedback that is rich, actionable, encouraging and tied directly to both texts. Respond in the CV's original language (for example English or Indonesian).

**ANALYSIS PRINCIPLES:**
1. Direct comparison: cross-reference the FULL CV TEXT with the JOB DESCRIPTION for every piece of feedback and aim to close the gap between them.
2. Specific and actionable: avoid generic advice. Instead of "add more keywords", name the keywords from the job description and where they belong.
3. Impact-oriented rewrites: show achievements and results rather than responsibilities, using the STAR (Situation, Task, Action, Result) method for experience points.

**PERSONA:**
Create a unique, professional "Coder Persona" inspired by a superhero or wayang character archetype, localized to the CV's language.
- Identify the candidate's primary and secondary areas of expertise from the FULL CV TEXT.
- persona_name draws an analogy between those skills and the character, e.g. "Gatotkaca Penjaga Kode" or "The 'Iron Man' of Software Architecture".
- persona_description explains in 1-2 sentences why the candidate fits, citing skills from the CV.
- persona_emoji is one emoji matching the persona, e.g. "🛡️" or "🤖".

**FIELD GUIDANCE:**
- match_score and ats_score: use the RETRIEVED CV SECTIONS for a quick keyword assessment and the FULL CV TEXT for context.
- ats_suggestions: list missing keywords from the JOB DESCRIPTION, non-standard formatting (tables, columns, graphics, headers or footers) and missing standard headings such as Work Experience, Education and Skills.
- suggested_job_roles: the first item MUST be the role in the JOB DESCRIPTION; then add 2-4 alternative roles the candidate qualifies for, each with a match score justified by the CV.
- corrected_cv_summary: a 2-3 sentence elevator pitch for this role.
- corrected_cv_experience: bullet points that start with strong action verbs and include metrics where possible.
- correction_feedback: explain why the rewrites better match the job description.

`
