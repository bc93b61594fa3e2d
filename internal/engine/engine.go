// Package engine composes the registration service, calculator catalog, file
// manager, visitor resolver, and step controller into the per-request
// operations the request layer invokes. All cross-component policy lives
// here; the HTTP layer stays mechanical.
package engine

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"regflow/internal/antiforgery"
	"regflow/internal/calculator"
	"regflow/internal/files"
	"regflow/internal/platform/metrics"
	"regflow/internal/registration"
	"regflow/internal/steps"
	"regflow/internal/visitor"
)

// Request carries the per-request material the excluded HTTP layer extracts:
// the page URL, the visitor profile, and the entry-URL creation hints.
type Request struct {
	PageURL string
	Profile visitor.Profile
	Hints   registration.CreationHints
}

// ViewModel is the init payload served to the client.
type ViewModel struct {
	CurrentStep      int                        `json:"currentStep"`
	MaxStep          int                        `json:"maxStep"`
	Autosave         bool                       `json:"autosave"`
	IsPhoneConfirmed bool                       `json:"isPhoneConfirmed"`
	IsEmailConfirmed bool                       `json:"isEmailConfirmed"`
	Token            string                     `json:"token"`
	Page             string                     `json:"page"`
	Fields           map[string]any             `json:"fields"`
	Files            map[string][]files.Summary `json:"files"`
	Calc             map[string]any             `json:"calc"`
	Options          map[string][]Option        `json:"options"`
}

// Engine is the façade over the registration state machine.
type Engine struct {
	regs    *registration.Service
	attach  *files.Manager
	calc    *calculator.Catalog
	stepCtl *steps.Controller
	tokens  *antiforgery.Service
	options OptionsProvider
	metrics *metrics.Metrics
	logger  *slog.Logger

	// Per-session serialization: every mutating operation for one session
	// runs alone, and concurrent find-or-create calls collapse into one.
	locks  *sessionLocks
	flight singleflight.Group
	tracer trace.Tracer
}

func New(
	regs *registration.Service,
	attach *files.Manager,
	calc *calculator.Catalog,
	stepCtl *steps.Controller,
	tokens *antiforgery.Service,
	options OptionsProvider,
	m *metrics.Metrics,
	logger *slog.Logger) *Engine {
	return &Engine{
		regs:    regs,
		attach:  attach,
		calc:    calc,
		stepCtl: stepCtl,
		tokens:  tokens,
		options: options,
		metrics: m,
		logger:  logger,
		locks:   newSessionLocks(),
		tracer:  otel.Tracer("regflow/engine"),
	}
}

// InitView resolves (or creates) the registration and assembles the full
// client view.
func (e *Engine) InitView(ctx context.Context, sessionID string, req Request) (*ViewModel, error) {
	ctx, span := e.startSpan(ctx, "engine.InitView", sessionID)
	defer span.End()

	unlock := e.locks.lock(sessionID)
	defer unlock()

	reg, err := e.findOrCreate(ctx, sessionID, req)
	if err != nil {
		return nil, err
	}

	projected := e.regs.ProjectedView(reg)
	fileListing, err := e.attach.ListByType(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	token, err := e.tokens.Issue(sessionID)
	if err != nil {
		return nil, err
	}

	return &ViewModel{
		CurrentStep:      reg.CurrentStep,
		MaxStep:          reg.MaxStep,
		Autosave:         reg.Autosave,
		IsPhoneConfirmed: fieldPresent(projected, "phoneVerifiedAt"),
		IsEmailConfirmed: fieldPresent(projected, "emailVerifiedAt"),
		Token:            token,
		Page:             req.PageURL,
		Fields:           projected,
		Files:            fileListing,
		Calc:             e.calc.PublicView(e.calc.Resolve(reg.ProductID)),
		Options:          e.options.Lists(),
	}, nil
}

// UpdateField applies a single named field update.
func (e *Engine) UpdateField(ctx context.Context, sessionID string, req Request, name string, value any) error {
	ctx, span := e.startSpan(ctx, "engine.UpdateField", sessionID)
	defer span.End()

	unlock := e.locks.lock(sessionID)
	defer unlock()

	reg, err := e.findOrCreate(ctx, sessionID, req)
	if err != nil {
		return err
	}
	if err := e.regs.ApplyFieldUpdate(ctx, reg, name, value); err != nil {
		return err
	}
	e.metrics.FieldUpdates.Inc()
	return nil
}

// UpdateFile stores an upload under a semantic type, replacing any previous
// attachment of that type.
func (e *Engine) UpdateFile(ctx context.Context, sessionID string, req Request, fileType string, upload files.Upload) error {
	ctx, span := e.startSpan(ctx, "engine.UpdateFile", sessionID)
	defer span.End()

	unlock := e.locks.lock(sessionID)
	defer unlock()

	if _, err := e.findOrCreate(ctx, sessionID, req); err != nil {
		return err
	}
	if err := e.attach.Replace(ctx, sessionID, fileType, upload); err != nil {
		return err
	}
	e.metrics.FileReplacements.Inc()
	return nil
}

// BulkUpdate applies a set of field updates in one persist, including the
// payment-data merge and the final-step payment transition.
func (e *Engine) BulkUpdate(ctx context.Context, sessionID string, req Request, updates map[string]any) error {
	ctx, span := e.startSpan(ctx, "engine.BulkUpdate", sessionID)
	defer span.End()

	unlock := e.locks.lock(sessionID)
	defer unlock()

	reg, err := e.findOrCreate(ctx, sessionID, req)
	if err != nil {
		return err
	}
	return e.regs.ApplyBulkUpdate(ctx, reg, updates)
}

// Delete removes the session's registration. Deleting a session that never
// registered is a no-op.
func (e *Engine) Delete(ctx context.Context, sessionID string) error {
	ctx, span := e.startSpan(ctx, "engine.Delete", sessionID)
	defer span.End()

	unlock := e.locks.lock(sessionID)
	defer unlock()

	reg, err := e.regs.Find(ctx, sessionID)
	if errors.Is(err, registration.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := e.regs.Delete(ctx, reg); err != nil {
		return err
	}
	e.metrics.RegistrationsDeleted.Inc()
	return nil
}

// ControlOrderID runs the order-id reconciliation ladder for the request.
func (e *Engine) ControlOrderID(ctx context.Context, sessionID string, req Request, suppliedOrderID string) (steps.Decision, error) {
	ctx, span := e.startSpan(ctx, "engine.ControlOrderID", sessionID)
	defer span.End()

	unlock := e.locks.lock(sessionID)
	defer unlock()

	reg, err := e.findOrCreate(ctx, sessionID, req)
	if err != nil {
		return steps.Decision{Kind: steps.DecisionNone}, err
	}
	return e.stepCtl.ReconcileOrderID(ctx, reg, suppliedOrderID, req.PageURL)
}

// findOrCreate collapses concurrent find-or-create calls for one session into
// a single store round trip.
func (e *Engine) findOrCreate(ctx context.Context, sessionID string, req Request) (*registration.Registration, error) {
	result, err, _ := e.flight.Do(sessionID, func() (any, error) {
		reg, err := e.regs.FindOrCreate(ctx, sessionID, req.Hints, req.Profile)
		if err == nil && reg.CreatedAt.Equal(reg.UpdatedAt) {
			e.metrics.RegistrationsCreated.Inc()
		}
		return reg, err
	})
	if err != nil {
		return nil, err
	}
	return result.(*registration.Registration), nil
}

func (e *Engine) startSpan(ctx context.Context, name, sessionID string) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("session.id", sessionID)))
}

func fieldPresent(projected map[string]any, key string) bool {
	value, ok := projected[key]
	if !ok || value == nil {
		return false
	}
	s, isString := value.(string)
	return !isString || s != ""
}
