// Package report renders analysis reports as markdown and HTML.
package report

import (
	"fmt"
	"strings"

	"promolift/domain/promo"
	"promolift/domain/stats"
)

// Section is one page of the rendered report
type Section string

const (
	SectionOverview    Section = "overview"
	SectionExploratory Section = "exploratory"
	SectionTesting     Section = "testing"
	SectionConclusion  Section = "conclusion"
)

// Sections lists every section in reading order
var Sections = []Section{SectionOverview, SectionExploratory, SectionTesting, SectionConclusion}

// Markdown renders the full report
func Markdown(r *stats.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Promotion A/B Test Report\n\n")
	fmt.Fprintf(&b, "Report `%s` generated %s.\n\n", r.ID, r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	for _, s := range Sections {
		writeSection(&b, r, s, "##")
	}
	return b.String()
}

// SectionMarkdown renders a single section as a standalone page
func SectionMarkdown(r *stats.Report, s Section) string {
	var b strings.Builder
	writeSection(&b, r, s, "#")
	return b.String()
}

func writeSection(b *strings.Builder, r *stats.Report, s Section, h string) {
	switch s {
	case SectionOverview:
		writeOverview(b, r, h)
	case SectionExploratory:
		writeExploratory(b, r, h)
	case SectionTesting:
		writeTesting(b, r, h)
	case SectionConclusion:
		writeConclusion(b, r, h)
	}
}

func writeOverview(b *strings.Builder, r *stats.Report, h string) {
	fmt.Fprintf(b, "%s Overview\n\n", h)
	fmt.Fprintf(b, "Comparing promotion **%s** (group A) against promotion **%s** (group B) on `SalesInThousands`.\n\n", r.GroupA, r.GroupB)
	fmt.Fprintf(b, "- Source: `%s`\n", r.Dataset.Source)
	if !r.Dataset.Checksum.IsEmpty() {
		fmt.Fprintf(b, "- Checksum (SHA-256): `%s`\n", r.Dataset.Checksum.Short())
	}
	fmt.Fprintf(b, "- Rows read: %d\n", r.Dataset.RowsRead)
	fmt.Fprintf(b, "- Rows excluded (other promotions): %d\n", r.Dataset.RowsExcluded)
	fmt.Fprintf(b, "- Rows analysed: %d\n\n", r.Dataset.Rows)

	b.WriteString("| Promotion | Observations |\n|---|---:|\n")
	for _, gc := range r.GroupCounts {
		fmt.Fprintf(b, "| %s | %d |\n", gc.Group, gc.Count)
	}
	b.WriteString("\n")
}

func writeExploratory(b *strings.Builder, r *stats.Report, h string) {
	fmt.Fprintf(b, "%s Exploratory Analysis\n\n", h)

	fmt.Fprintf(b, "%s# Summary statistics\n\n", h)
	b.WriteString("| Column | Count | Mean | Std | Min | 25% | 50% | 75% | Max |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, c := range r.Summary {
		fmt.Fprintf(b, "| %s | %d | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
			c.Column, c.Count, c.Mean, c.Std, c.Min, c.Q25, c.Median, c.Q75, c.Max)
	}
	b.WriteString("\n")

	fmt.Fprintf(b, "%s# Weekly sales\n\n", h)
	fmt.Fprintf(b, "| Week | Promotion %s | Promotion %s |\n|---:|---:|---:|\n", r.GroupA, r.GroupB)
	byWeek := make(map[int]map[promo.GroupLabel]float64)
	var weeks []int
	for _, p := range r.Trend {
		if _, ok := byWeek[p.Week]; !ok {
			byWeek[p.Week] = make(map[promo.GroupLabel]float64)
			weeks = append(weeks, p.Week)
		}
		byWeek[p.Week][p.Group] = p.Total
	}
	for _, w := range weeks {
		fmt.Fprintf(b, "| %d | %.2f | %.2f |\n", w, byWeek[w][r.GroupA], byWeek[w][r.GroupB])
	}
	b.WriteString("\n")

	fmt.Fprintf(b, "%s# Sales by market size\n\n", h)
	writeSegments(b, r, r.MarketSegments, "Market size")
	fmt.Fprintf(b, "%s# Sales by store age\n\n", h)
	writeSegments(b, r, r.AgeSegments, "Store age")
}

func writeSegments(b *strings.Builder, r *stats.Report, rows []stats.SegmentRow, label string) {
	if len(rows) == 0 {
		b.WriteString("_No segments._\n\n")
		return
	}
	fmt.Fprintf(b, "| %s | n %s | Mean %s | Std %s | n %s | Mean %s | Std %s | Difference | Difference %% |\n",
		label, r.GroupA, r.GroupA, r.GroupA, r.GroupB, r.GroupB, r.GroupB)
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, s := range rows {
		fmt.Fprintf(b, "| %s | %d | %s | %s | %d | %s | %s | %s | %s |\n",
			s.Key, s.CountA, estimate(s.MeanA, "%.2f"), estimate(s.StdA, "%.2f"),
			s.CountB, estimate(s.MeanB, "%.2f"), estimate(s.StdB, "%.2f"),
			estimate(s.Difference, "%.2f"), estimate(s.PercentDifference, "%.2f%%"))
	}
	b.WriteString("\n")
}

func writeTesting(b *strings.Builder, r *stats.Report, h string) {
	fmt.Fprintf(b, "%s Statistical Testing\n\n", h)

	ar := r.Assumptions
	fmt.Fprintf(b, "%s# Assumptions\n\n", h)
	b.WriteString("| Check | Statistic | p-value | Holds |\n|---|---:|---:|---|\n")
	for _, n := range []stats.NormalityTest{ar.NormalityA, ar.NormalityB} {
		fmt.Fprintf(b, "| Normality of promotion %s (%s, n=%d) | %s | %s | %s |\n",
			n.Group, n.Method, n.N, estimate(n.Statistic, "%.4f"), estimate(n.PValue, "%.4g"), yesNo(n.Normal))
	}
	fmt.Fprintf(b, "| Equal variances (%s) | %s | %s | %s |\n\n",
		ar.Variance.Method, estimate(ar.Variance.Statistic, "%.4f"), estimate(ar.Variance.PValue, "%.4g"), yesNo(ar.Variance.Equal))

	t := r.Test
	fmt.Fprintf(b, "%s# Hypothesis test\n\n", h)
	fmt.Fprintf(b, "Selected a %s test (%s) with n₁=%d and n₂=%d.\n\n", t.Kind, t.Method, t.N1, t.N2)
	if t.Undefined != nil {
		fmt.Fprintf(b, "The test could not be computed: %s.\n\n", t.Undefined.Reason)
	} else {
		fmt.Fprintf(b, "- Statistic: %.4f\n- p-value: %.4g\n- Significant at α=%.2f: %s\n\n",
			t.Statistic, t.PValue, t.Alpha, yesNo(t.Significant))
	}

	e := r.Effect
	fmt.Fprintf(b, "%s# Effect size\n\n", h)
	if e.Undefined != nil {
		fmt.Fprintf(b, "Cohen's d could not be computed: %s.\n\n", e.Undefined.Reason)
	} else {
		fmt.Fprintf(b, "Cohen's d = %.3f (%s), pooled SD %.3f, mean difference %.2f.\n\n", e.D, e.Magnitude, e.PooledSD, e.Difference)
	}

	fmt.Fprintf(b, "%s# Factorial models (Type-II ANOVA)\n\n", h)
	for _, m := range r.Models {
		fmt.Fprintf(b, "**%s** (n=%d)\n\n", m.Formula, m.N)
		if m.Undefined != nil {
			fmt.Fprintf(b, "_%s_\n\n", m.Undefined.Reason)
			continue
		}
		b.WriteString("| Term | Sum Sq | df | F | PR(>F) |\n|---|---:|---:|---:|---:|\n")
		for _, term := range m.Terms {
			fmt.Fprintf(b, "| %s | %.3f | %g | %s | %s |\n",
				term.Name, term.SumSq, term.DF, estimate(term.F, "%.3f"), estimate(term.PValue, "%.4g"))
		}
		fmt.Fprintf(b, "| Residual | %.3f | %g | | |\n\n", m.Residual.SumSq, m.Residual.DF)
	}
}

func writeConclusion(b *strings.Builder, r *stats.Report, h string) {
	c := r.Conclusion
	fmt.Fprintf(b, "%s Conclusion\n\n", h)
	fmt.Fprintf(b, "%s\n\n", c.Recommendation)
	preferred := string(c.Preferred)
	if preferred == "" {
		preferred = "none"
	}
	fmt.Fprintf(b, "- Preferred promotion: %s\n", preferred)
	fmt.Fprintf(b, "- Mean difference (A - B): %.2f\n", c.Difference)
	fmt.Fprintf(b, "- Sales lift relative to promotion %s: %s\n\n", r.GroupB, estimate(c.LiftPercent, "%.2f%%"))
}

func estimate(e stats.Estimate, format string) string {
	if !e.IsDefined() {
		return "n/a"
	}
	return fmt.Sprintf(format, e.Value)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
