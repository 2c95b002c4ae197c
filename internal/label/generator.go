// Package label produces the short printed identifiers for boxes and
// shipments. Identifiers are random, so generation checks the candidate
// against existing records and retries on collision. The retry budget is
// deliberately small: running out means the identifier space is saturated,
// which is a server-side fault, not a caller mistake.
package label

import (
	"context"
	"fmt"
	"math/rand/v2"

	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
)

// maxAttempts bounds collision retries per generated identifier.
const maxAttempts = 10

// Checker answers uniqueness probes against existing records.
type Checker interface {
	BoxLabelExists(ctx context.Context, label id.BoxLabel) (bool, error)
	ShipmentCodeExists(ctx context.Context, code id.ShipmentCode) (bool, error)
}

// Generator mints collision-checked identifiers.
type Generator struct {
	checker Checker
	intN    func(n int) int
}

type Option func(*Generator)

// WithRand overrides the random source for deterministic tests.
func WithRand(intN func(n int) int) Option {
	return func(g *Generator) {
		g.intN = intN
	}
}

func New(checker Checker, opts ...Option) *Generator {
	g := &Generator{checker: checker, intN: rand.IntN}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewBoxLabel returns a fresh 8-digit box label.
func (g *Generator) NewBoxLabel(ctx context.Context) (id.BoxLabel, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := id.BoxLabel(g.digits(id.BoxLabelLength))
		exists, err := g.checker.BoxLabelExists(ctx, candidate)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "box label uniqueness check failed")
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", dErrors.Newf(dErrors.CodeResourceExhausted,
		"could not find a free box label in %d attempts", maxAttempts)
}

// NewShipmentCode returns a fresh shipment code of the form S<seq>-<rand>.
// The sequence keeps codes roughly sortable by creation; the random suffix
// makes them hard to guess.
func (g *Generator) NewShipmentCode(ctx context.Context, seq int64) (id.ShipmentCode, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := id.ShipmentCode(fmt.Sprintf("S%04d-%s", seq, g.digits(4)))
		exists, err := g.checker.ShipmentCodeExists(ctx, candidate)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "shipment code uniqueness check failed")
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", dErrors.Newf(dErrors.CodeResourceExhausted,
		"could not find a free shipment code in %d attempts", maxAttempts)
}

func (g *Generator) digits(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte('0' + g.intN(10))
	}
	return string(buf)
}
