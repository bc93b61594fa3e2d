// Package steps interprets the registration's position in the ordered flow:
// the forced transition into the payment phase when the final data-entry step
// is reached, and the order-id reconciliation ladder that gates
// assign → poll-while-pending → finalize-and-rotate-session.
package steps

import (
	"context"
	"log/slog"
	"net/url"

	"regflow/internal/audit"
	"regflow/internal/platform/metrics"
	"regflow/internal/registration"
	"regflow/pkg/apperrors"
)

//go:generate mockgen -source=controller.go -destination=mocks/controller_mocks.go -package=mocks PaymentGateway,SessionRotator

// PaymentGateway is the payment provider's status-check trigger point; the
// provider's own protocol is out of scope here.
type PaymentGateway interface {
	CheckStatus(ctx context.Context, orderID string) error
}

// SessionRotator regenerates the session identity on finalization.
type SessionRotator interface {
	Regenerate(ctx context.Context, oldID string) (string, error)
}

// DecisionKind classifies the outcome of order-id reconciliation.
type DecisionKind string

const (
	DecisionNone     DecisionKind = "none"
	DecisionRedirect DecisionKind = "redirect"
)

// Decision tells the request layer what to do next. RedirectURL is the
// current page with the order_id query parameter stripped; NewSessionID is
// set when the session identity was regenerated and must reach the client's
// cookie before the redirect.
type Decision struct {
	Kind         DecisionKind
	RedirectURL  string
	NewSessionID string
}

var noDecision = Decision{Kind: DecisionNone}

// Controller drives step progression and payment correlation.
type Controller struct {
	store    registration.Store
	gateway  PaymentGateway
	sessions SessionRotator
	audit    *audit.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewController(
	store registration.Store,
	gateway PaymentGateway,
	sessions SessionRotator,
	auditPub *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger) *Controller {
	return &Controller{
		store:    store,
		gateway:  gateway,
		sessions: sessions,
		audit:    auditPub,
		metrics:  m,
		logger:   logger,
	}
}

// AdvanceToPayment re-drives a registration that just persisted the final
// data-entry step into the payment phase. This is the controller's own
// step-set operation, not a plain field write: it persists the step change
// and emits the payment-path side effects.
func (c *Controller) AdvanceToPayment(ctx context.Context, reg *registration.Registration) error {
	if reg.CurrentStep > reg.MaxStep {
		reg.MaxStep = reg.CurrentStep
	}
	reg.CurrentStep = registration.PaymentStep
	if err := c.store.Save(ctx, reg); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageWrite, "advance to payment step", err)
	}

	c.logger.InfoContext(ctx, "registration advanced to payment step", "session_id", reg.SessionID)
	if err := c.audit.Emit(ctx, audit.NewEvent(reg.SessionID, audit.ActionStepAdvanced, map[string]string{
		"step": "payment",
	})); err != nil {
		c.logger.WarnContext(ctx, "audit emit failed", "error", err.Error())
	}
	return nil
}

// ReconcileOrderID resolves the supplied order id against the stored one and
// the current step. Mismatched or premature order ids are never errors; they
// resolve through the decision ladder.
func (c *Controller) ReconcileOrderID(ctx context.Context, reg *registration.Registration, suppliedOrderID, pageURL string) (Decision, error) {
	// Finalized flow without an assigned order id: rotate the identity so a
	// repeated request with the old one cannot re-trigger finalization.
	if reg.OrderID == "" && reg.CurrentStep == registration.FinalStep {
		return c.rotateAndRedirect(ctx, reg, pageURL)
	}

	if suppliedOrderID == "" {
		return noDecision, nil
	}

	// An order id cannot arrive before one has been assigned server-side.
	if reg.OrderID == "" {
		return Decision{Kind: DecisionRedirect, RedirectURL: stripOrderID(pageURL)}, nil
	}

	if reg.OrderID == suppliedOrderID {
		if reg.CurrentStep == registration.PaymentStep {
			c.pollPaymentStatus(ctx, reg)
		}
		if reg.CurrentStep == registration.FinalStep {
			return c.rotateAndRedirect(ctx, reg, pageURL)
		}
	}

	return noDecision, nil
}

func (c *Controller) pollPaymentStatus(ctx context.Context, reg *registration.Registration) {
	c.metrics.PaymentStatusPolls.Inc()
	if err := c.gateway.CheckStatus(ctx, reg.OrderID); err != nil {
		c.logger.WarnContext(ctx, "payment status poll failed",
			"session_id", reg.SessionID,
			"order_id", reg.OrderID,
			"error", err.Error(),
		)
		return
	}
	if err := c.audit.Emit(ctx, audit.NewEvent(reg.SessionID, audit.ActionPaymentPoll, map[string]string{
		"order_id": reg.OrderID,
	})); err != nil {
		c.logger.WarnContext(ctx, "audit emit failed", "error", err.Error())
	}
}

// rotateAndRedirect regenerates the session identity and only then builds the
// redirect, so the old identity is dead before the client can follow it.
func (c *Controller) rotateAndRedirect(ctx context.Context, reg *registration.Registration, pageURL string) (Decision, error) {
	newID, err := c.sessions.Regenerate(ctx, reg.SessionID)
	if err != nil {
		return noDecision, apperrors.Wrap(apperrors.CodeStorageWrite, "regenerate session", err)
	}
	c.metrics.SessionRotations.Inc()
	if err := c.audit.Emit(ctx, audit.NewEvent(reg.SessionID, audit.ActionSessionRotated, nil)); err != nil {
		c.logger.WarnContext(ctx, "audit emit failed", "error", err.Error())
	}
	return Decision{
		Kind:         DecisionRedirect,
		RedirectURL:  stripOrderID(pageURL),
		NewSessionID: newID,
	}, nil
}

// stripOrderID removes only the order_id query parameter from the page URL.
func stripOrderID(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	q := u.Query()
	q.Del("order_id")
	u.RawQuery = q.Encode()
	return u.String()
}
