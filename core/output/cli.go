package output

import (
	"io"

	"ppp-pricing/core/engine"
	"ppp-pricing/core/types"
	"ppp-pricing/core/ui"
)

type cliFormatter struct {
	noColor bool
	verbose bool
}

func (f *cliFormatter) Format() Format { return FormatCLI }

func (f *cliFormatter) writer(w io.Writer) *ui.Writer {
	out := ui.NewWriter(w, f.noColor)
	if f.verbose {
		out.SetVerbosity(2)
	}
	return out
}

func (f *cliFormatter) Render(w io.Writer, report *engine.Report) error {
	out := f.writer(w)

	summary := out.NewQuoteSummary()
	summary.RunID = report.RunID.String()
	summary.Indicator = string(report.Indicator)
	summary.BasePrice = FormatPrice(report.BasePrice, report.ReferenceCurrency) + " in " + string(report.Reference)
	summary.Quoted = len(report.Quotes)
	summary.Changed = len(report.Changes())
	summary.Skipped = len(report.Skipped)
	summary.Render()
	if len(report.InputHash) >= 16 {
		out.Info("Inputs %s", report.InputHash[:16])
	}

	if len(report.Quotes) > 0 {
		out.Header("Quotes")
		table := out.NewTable("Territory", "Path", "Ratio", "Target", "Price", "Current")
		for _, q := range report.Quotes {
			current := "-"
			if q.Current != nil {
				current = FormatPrice(q.Current.Price, q.Current.Currency)
			}
			table.AddRow(
				string(q.Territory),
				q.Resolution.Provenance(),
				Ratio(q.Resolution.Ratio),
				FormatPrice(q.LocalTarget, q.Currency),
				FormatPrice(q.Matched.Price, q.Currency),
				current,
			)
		}
		table.Render()
	}

	changes := out.NewPriceChanges()
	for _, q := range report.Changes() {
		if q.Current == nil {
			continue
		}
		changes.Items = append(changes.Items, ui.PriceChange{
			Territory:  string(q.Territory),
			OldPrice:   FormatPrice(q.Current.Price, q.Current.Currency),
			NewPrice:   FormatPrice(q.Matched.Price, q.Currency),
			IsIncrease: q.Matched.Price.GreaterThan(q.Current.Price),
		})
	}
	changes.Render()

	if len(report.Skipped) > 0 {
		out.Header("Skipped")
		for _, s := range report.Skipped {
			if s.Reason == engine.ReasonOther {
				out.Error("%s: %s", s.Territory, s.Message)
				continue
			}
			out.Warning("%s: %s", s.Territory, s.Reason)
			out.Debug("%s", s.Message)
		}
	} else if len(report.Changes()) == 0 && len(report.Quotes) > 0 {
		out.Println("")
		out.Success("All %d prices are current", len(report.Quotes))
	}
	return nil
}

func (f *cliFormatter) RenderRatios(w io.Writer, results []types.ResolutionResult) error {
	out := f.writer(w)
	table := out.NewTable("Territory", "Indicator", "Path", "Source", "Via", "Ratio")
	unresolved := 0
	for _, r := range results {
		if !r.Resolved() {
			unresolved++
			table.AddRow(string(r.Territory), string(r.Indicator), string(r.Path), "-", "-", "-")
			continue
		}
		path := string(r.Path)
		if r.Path == types.PathCrossSource {
			path += "/" + string(r.FallbackPath)
		}
		via := r.Via
		if via == "" {
			via = "-"
		}
		table.AddRow(string(r.Territory), string(r.Indicator), path, string(r.Source), via, Ratio(r.Ratio))
	}
	table.Render()
	out.Println("")
	if unresolved > 0 {
		out.Warning("%d of %d territories unresolved", unresolved, len(results))
	} else {
		out.Success("All %d territories resolved", len(results))
	}
	return nil
}
