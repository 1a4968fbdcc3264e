package output

import (
	"encoding/json"
	"io"

	"ppp-pricing/core/engine"
	"ppp-pricing/core/types"
)

type jsonFormatter struct{}

func (jsonFormatter) Format() Format { return FormatJSON }

func (jsonFormatter) Render(w io.Writer, report *engine.Report) error {
	return encode(w, report)
}

func (jsonFormatter) RenderRatios(w io.Writer, results []types.ResolutionResult) error {
	return encode(w, struct {
		Ratios []types.ResolutionResult `json:"ratios"`
	}{results})
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
