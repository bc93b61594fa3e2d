// Package calculator holds the static per-product configuration bounding
// permissible amounts and terms, plus the resolution rules used when a
// registration is seeded from an entry URL.
package calculator

import (
	"regflow/internal/fields"
	"regflow/pkg/apperrors"
)

// Config describes one product calculator. Sum and term each carry a default
// inside an inclusive [min, max] range.
type Config struct {
	ProductID   string
	Default     bool
	SumMin      int64
	SumMax      int64
	SumDefault  int64
	TermMin     int
	TermMax     int
	TermDefault int
}

// CreationFields are the registration seed values derived from a calculator.
type CreationFields struct {
	ProductID string
	Sum       *int64
	Term      *int
}

// Catalog resolves calculators by product id with a designated default entry
// as the fallback.
type Catalog struct {
	byProduct map[string]Config
	def       Config
}

// New validates the entries and builds the catalog. Exactly one entry must be
// flagged as default; anything else is a deployment configuration error and
// fatal at startup.
func New(entries []Config) (*Catalog, error) {
	c := &Catalog{byProduct: make(map[string]Config, len(entries))}
	defaults := 0
	for _, entry := range entries {
		c.byProduct[entry.ProductID] = entry
		if entry.Default {
			c.def = entry
			defaults++
		}
	}
	if defaults != 1 {
		return nil, apperrors.New(apperrors.CodeConfiguration, "calculator catalog must define exactly one default entry")
	}
	return c, nil
}

// Resolve returns the calculator for productID, or the default entry when the
// id is empty or unknown.
func (c *Catalog) Resolve(productID string) Config {
	if productID != "" {
		if entry, ok := c.byProduct[productID]; ok {
			return entry
		}
	}
	return c.def
}

// DeriveCreationFields resolves the calculator and derives the registration
// seed. Requested sum/term win only when inside the inclusive bounds;
// out-of-range values are silently ignored in favor of the defaults (not
// clamped, not rejected).
func (c *Catalog) DeriveCreationFields(productID string, requestedSum *int64, requestedTerm *int) CreationFields {
	cfg := c.Resolve(productID)

	sum := cfg.SumDefault
	if requestedSum != nil && cfg.SumMin <= *requestedSum && *requestedSum <= cfg.SumMax {
		sum = *requestedSum
	}

	term := cfg.TermDefault
	if requestedTerm != nil && cfg.TermMin <= *requestedTerm && *requestedTerm <= cfg.TermMax {
		term = *requestedTerm
	}

	return CreationFields{ProductID: cfg.ProductID, Sum: &sum, Term: &term}
}

// Default is the built-in catalog for deployments that do not override it.
func Default() []Config {
	return []Config{
		{
			ProductID:  "standard",
			Default:    true,
			SumMin:     2000,
			SumMax:     30000,
			SumDefault: 10000,
			TermMin:    5, TermMax: 30, TermDefault: 10,
		},
		{
			ProductID:  "extended",
			SumMin:     30000,
			SumMax:     100000,
			SumDefault: 50000,
			TermMin:    60, TermMax: 365, TermDefault: 180,
		},
	}
}

// PublicView projects a config into external naming for clients. The default
// flag is internal-only and never leaves the server.
func (c *Catalog) PublicView(cfg Config) map[string]any {
	attrs := map[string]any{
		"product_id":   cfg.ProductID,
		"sum_min":      cfg.SumMin,
		"sum_max":      cfg.SumMax,
		"sum_default":  cfg.SumDefault,
		"term_min":     cfg.TermMin,
		"term_max":     cfg.TermMax,
		"term_default": cfg.TermDefault,
	}
	return fields.Project(attrs, nil)
}
