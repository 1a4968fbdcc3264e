package output

import (
	"fmt"
	"io"
	"strings"

	"ppp-pricing/core/engine"
	"ppp-pricing/core/types"
)

type markdownFormatter struct{}

func (markdownFormatter) Format() Format { return FormatMarkdown }

func (markdownFormatter) Render(w io.Writer, report *engine.Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# PPP price plan\n\n")
	fmt.Fprintf(&b, "Base price **%s** in %s, indicator `%s`.\n\n",
		FormatPrice(report.BasePrice, report.ReferenceCurrency), report.Reference, report.Indicator)

	if len(report.Quotes) > 0 {
		b.WriteString("## Quotes\n\n")
		b.WriteString("| Territory | Path | Ratio | Target | Price | Current | Changed |\n")
		b.WriteString("|---|---|---:|---:|---:|---:|---|\n")
		for _, q := range report.Quotes {
			current := "-"
			if q.Current != nil {
				current = FormatPrice(q.Current.Price, q.Current.Currency)
			}
			changed := "no"
			if q.Changed {
				changed = "yes"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				q.Territory, cell(q.Resolution.Provenance()), Ratio(q.Resolution.Ratio),
				cell(FormatPrice(q.LocalTarget, q.Currency)), cell(FormatPrice(q.Matched.Price, q.Currency)),
				cell(current), changed)
		}
		b.WriteString("\n")
	}

	if len(report.Skipped) > 0 {
		b.WriteString("## Skipped\n\n")
		for _, s := range report.Skipped {
			fmt.Fprintf(&b, "- %s: %s\n", s.Territory, s.Reason)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "_Run %s_\n", report.RunID)
	if len(report.InputHash) >= 16 {
		fmt.Fprintf(&b, "\n_Inputs %s_\n", report.InputHash[:16])
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (markdownFormatter) RenderRatios(w io.Writer, results []types.ResolutionResult) error {
	var b strings.Builder
	b.WriteString("| Territory | Indicator | Path | Source | Via | Ratio |\n")
	b.WriteString("|---|---|---|---|---|---:|\n")
	for _, r := range results {
		ratio := "-"
		if r.Resolved() {
			ratio = Ratio(r.Ratio)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			r.Territory, r.Indicator, r.Path, r.Source, r.Via, ratio)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// cell escapes the table delimiter
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
