// Package render prints a review report for a terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"alfredoptarigan/cv-reviewer/internal/models"
)

const (
	barWidth     = 20
	notAvailable = "Not available."
)

// Text writes the report in the order the web frontend shows it: scores,
// persona, rewrites, suggestions, ATS review and suggested roles.
func Text(w io.Writer, r *models.ReviewResult) error {
	if r == nil {
		return fmt.Errorf("nothing to render")
	}

	p := &printer{w: w}

	p.line("🎉 Analysis Complete!")
	p.line("")
	p.linef("CV Match Score:     %d%%", r.MatchScore)
	p.linef("ATS Friendliness:   %d%%", r.ATSScore)
	target, _ := r.TargetRole()
	p.linef("Target Role Fit:    %d%%", target.Score)

	if r.HasPersona() {
		p.section("Your Persona Overview")
		p.linef("%s  %s", r.PersonaEmoji, r.PersonaName)
		p.linef("> %s", r.PersonaDescription)
	}

	p.section("✅ Corrections & Rewrites")
	p.line("Optimized Professional Summary:")
	p.block(r.CorrectedCVSummary)
	p.line("")
	p.line("Optimized Work Experience:")
	p.block(r.CorrectedCVExperience)
	p.line("")
	p.line("Correction Rationale:")
	p.block(r.CorrectionFeedback)

	p.section("🚀 Optimization Suggestions")
	p.bullets(r.OptimizationSuggestions)

	p.section("📄 ATS Review")
	p.bullets(r.ATSSuggestions)

	p.section("🎯 Suggested Roles")
	if len(r.SuggestedJobRoles) == 0 {
		p.line("No job role suggestions could be generated at this time.")
	}
	for i, role := range r.SuggestedJobRoles {
		name := role.Role
		if name == "" {
			name = "N/A"
		}
		if i == 0 {
			name += " (Your Target Role)"
		}
		p.line(name)
		p.linef("  %s %d%% Match", Bar(role.Score), role.Score)
	}

	return p.err
}

// Bar renders score (0-100) as a fixed-width text progress bar.
func Bar(score int) string {
	score = max(0, min(score, 100))
	filled := score * barWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]"
}

// printer keeps the first write error so callers check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *printer) linef(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

func (p *printer) section(title string) {
	p.line("")
	p.line(title)
	p.line(strings.Repeat("=", len([]rune(title))))
}

func (p *printer) block(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = notAvailable
	}
	for _, l := range strings.Split(s, "\n") {
		p.line("  " + l)
	}
}

func (p *printer) bullets(items []string) {
	for _, item := range items {
		p.line("- " + item)
	}
}
