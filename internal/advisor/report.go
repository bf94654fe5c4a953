package advisor

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"selfheal/internal/fault"
)

// Finding is one triggered rule.
type Finding struct {
	Signal         string       `json:"signal"`
	Recommendation string       `json:"recommendation"`
	Severity       HealthStatus `json:"severity"`
}

// HealthReport is the periodic health summary.
type HealthReport struct {
	RunID         string       `json:"run_id,omitempty"`
	GeneratedAt   time.Time    `json:"generated_at"`
	Health        float64      `json:"health"`
	Corrections   int64        `json:"corrections"`
	FaultRaised   bool         `json:"fault_raised"`
	FaultCode     fault.Code   `json:"fault_code,omitempty"`
	OverallStatus HealthStatus `json:"overall_status"`
	Summary       string       `json:"summary"`
	Findings      []Finding    `json:"findings"`
}

// Recommendations lists the recommendation of every finding, in rule order.
func (r HealthReport) Recommendations() []string {
	out := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		out = append(out, f.Recommendation)
	}
	return out
}

// HasRecommendation reports whether any finding recommends text.
func (r HealthReport) HasRecommendation(text string) bool {
	for _, f := range r.Findings {
		if f.Recommendation == text {
			return true
		}
	}
	return false
}

var (
	ruleColor   = color.New(color.FgHiBlack)
	titleColor  = color.New(color.FgCyan, color.Bold)
	actionColor = color.New(color.FgRed, color.Bold)
	optColor    = color.New(color.FgGreen)
)

// Render writes the report as a framed console block.
func (r HealthReport) Render(w io.Writer) {
	line := strings.Repeat("=", 50)

	_, _ = ruleColor.Fprintln(w, line)
	_, _ = titleColor.Fprintf(w, "SYSTEM HEALTH REPORT [%s] %s\n", r.GeneratedAt.Format("15:04:05"), r.OverallStatus)
	fmt.Fprintf(w, "Current Health: %.1f/100\n", r.Health)
	fmt.Fprintf(w, "Total Corrections: %d\n", r.Corrections)
	if r.FaultRaised {
		fmt.Fprintf(w, "Pending Fault: %d (%s)\n", r.FaultCode, r.FaultCode.Band())
	}
	for _, f := range r.Findings {
		if f.Severity == StatusOK {
			_, _ = optColor.Fprintf(w, "OPTIMIZATION: %s\n", f.Recommendation)
			continue
		}
		_, _ = actionColor.Fprintf(w, "ACTION REQUIRED: %s\n", f.Recommendation)
	}
	_, _ = ruleColor.Fprintln(w, line)
}
