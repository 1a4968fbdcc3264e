package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ppp-pricing/core/determinism"
	"ppp-pricing/core/storefront"
	"ppp-pricing/core/types"
	"ppp-pricing/internal/errors"
)

// Request is the input to Plan
type Request struct {
	// REQUIRED: base price in the reference currency
	BasePrice decimal.Decimal

	// REQUIRED: indicator to resolve ratios with
	Indicator types.Indicator

	// Territories to quote. Empty means every territory the price point
	// source lists.
	Territories []types.Territory
}

// Skip reasons
const (
	ReasonUnresolved   = "unresolved"
	ReasonNoPricePoint = "no price points"
	ReasonConversion   = "conversion failed"
	ReasonInvalid      = "invalid input"
	ReasonOther        = "error"
)

// Skipped is a territory that could not be quoted
type Skipped struct {
	Territory types.Territory      `json:"territory"`
	Reason    string               `json:"reason"`
	Path      types.ResolutionPath `json:"path,omitempty"`
	Err       error                `json:"-"`
	Message   string               `json:"message,omitempty"`
}

// Report is the output of Plan
type Report struct {
	RunID             uuid.UUID       `json:"run_id"`
	Indicator         types.Indicator `json:"indicator"`
	BasePrice         decimal.Decimal `json:"base_price"`
	Reference         types.Territory `json:"reference"`
	ReferenceCurrency types.Currency  `json:"reference_currency"`

	// InputHash fingerprints the request and the indicator data it was
	// priced with; equal hashes mean equal quotes
	InputHash string `json:"input_hash"`

	// Quotes and Skipped keep the order of the requested territories
	Quotes  []Quote   `json:"quotes"`
	Skipped []Skipped `json:"skipped,omitempty"`

	GeneratedAt time.Time     `json:"generated_at"`
	Duration    time.Duration `json:"duration"`
}

// PathCounts counts quotes per resolution path
func (r *Report) PathCounts() map[types.ResolutionPath]int {
	out := make(map[types.ResolutionPath]int)
	for _, q := range r.Quotes {
		out[q.Resolution.Path]++
	}
	return out
}

// Changes returns the quotes whose price differs from the live one
func (r *Report) Changes() []Quote {
	var out []Quote
	for _, q := range r.Quotes {
		if q.Changed {
			out = append(out, q)
		}
	}
	return out
}

// Plan quotes every requested territory in parallel. Only an invalid
// request fails; territories that cannot be priced are listed in Skipped.
func (e *Engine) Plan(req Request) (*Report, error) {
	if !req.BasePrice.IsPositive() {
		return nil, errors.InvalidInput("base price must be positive").
			WithContext("base", req.BasePrice.String())
	}
	if !req.Indicator.IsValid() {
		return nil, errors.Newf(errors.TypeInvalidInput, "unknown indicator %q", req.Indicator)
	}

	territories := req.Territories
	if len(territories) == 0 {
		lister, ok := e.points.(storefront.Lister)
		if !ok {
			return nil, errors.InvalidInput("no territories requested")
		}
		territories = lister.Territories()
	}

	start := time.Now()
	type outcome struct {
		quote *Quote
		err   error
	}
	outcomes := make([]outcome, len(territories))

	var g errgroup.Group
	g.SetLimit(e.config.Workers)
	for i, t := range territories {
		i, t := i, t
		g.Go(func() error {
			q, err := e.Quote(req.BasePrice, t, req.Indicator)
			outcomes[i] = outcome{quote: q, err: err}
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{
		RunID:             uuid.New(),
		Indicator:         req.Indicator,
		BasePrice:         req.BasePrice,
		Reference:         e.config.Reference,
		ReferenceCurrency: e.config.ReferenceCurrency,
		InputHash:         e.inputHash(req, territories).Hex(),
		Quotes:            make([]Quote, 0, len(territories)),
		GeneratedAt:       start.UTC(),
	}
	for i, o := range outcomes {
		if o.err == nil {
			report.Quotes = append(report.Quotes, *o.quote)
			continue
		}
		report.Skipped = append(report.Skipped, skipped(territories[i], o.err))
	}
	report.Duration = time.Since(start)

	e.logger.Info("Planned prices",
		zap.String("run_id", report.RunID.String()),
		zap.String("indicator", string(req.Indicator)),
		zap.Int("quoted", len(report.Quotes)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Any("paths", report.PathCounts()),
		zap.Duration("duration", report.Duration))
	return report, nil
}

// inputHash covers the request, the engine settings and every installed
// table's ratios. Table generation IDs are left out since they change on
// every rebuild of identical data.
func (e *Engine) inputHash(req Request, territories []types.Territory) determinism.ContentHash {
	h := determinism.NewHasher("ppp-pricing/plan").
		Write(req.BasePrice.String(), string(req.Indicator)).
		Write(string(e.config.Reference), string(e.config.ReferenceCurrency))
	for _, t := range territories {
		h.Write(string(t))
	}
	for _, ind := range types.AllIndicators() {
		table, ok := e.resolver.Table(ind)
		if !ok {
			continue
		}
		h.Write("table", string(ind))
		ratios := table.Ratios()
		for _, t := range determinism.SortedKeys(ratios) {
			h.Write(string(t), ratios[t].String())
		}
	}
	return h.Sum()
}

func skipped(t types.Territory, err error) Skipped {
	s := Skipped{Territory: t, Err: err, Message: err.Error()}
	typ, _ := errors.TypeOf(err)
	switch {
	case typ == errors.TypeNotFound:
		s.Reason = ReasonUnresolved
		s.Path = types.PathUnresolved
	case errors.IsType(err, errors.TypeConversion):
		s.Reason = ReasonConversion
	case errors.IsType(err, errors.TypeNoPricePoints):
		s.Reason = ReasonNoPricePoint
	case errors.IsType(err, errors.TypeInvalidInput):
		s.Reason = ReasonInvalid
	default:
		s.Reason = ReasonOther
	}
	return s
}
