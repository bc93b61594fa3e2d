package registration

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strconv"

	"regflow/internal/audit"
	"regflow/internal/calculator"
	"regflow/internal/fields"
	"regflow/internal/visitor"
	"regflow/pkg/apperrors"
)

// CreationHints are the entry-URL parameters that seed a registration. A
// non-empty ProductID switches FindOrCreate from first-or-create to upsert
// semantics.
type CreationHints struct {
	ProductID string
	Sum       *int64
	Term      *int
	RefID     string
}

// StepAdvancer is the step controller hook fired when a bulk update marks the
// final data-entry step reached. Declared here so the service does not depend
// on the steps package.
type StepAdvancer interface {
	AdvanceToPayment(ctx context.Context, reg *Registration) error
}

// Service owns the find-or-create, field-update, and projection rules for
// registrations. It never talks HTTP; the engine façade drives it.
type Service struct {
	store    Store
	calc     *calculator.Catalog
	visitors *visitor.Resolver
	advancer StepAdvancer
	audit    *audit.Publisher
	logger   *slog.Logger
}

func NewService(store Store, calc *calculator.Catalog, visitors *visitor.Resolver, auditPub *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, calc: calc, visitors: visitors, audit: auditPub, logger: logger}
}

// SetStepAdvancer wires the step controller in after construction; the
// controller itself needs the registration store, so the dependency cannot be
// passed to NewService.
func (s *Service) SetStepAdvancer(advancer StepAdvancer) {
	s.advancer = advancer
}

// FindOrCreate locates the registration for sessionID, creating it (and its
// visitor) on first access. When hints carry a product id the call upserts:
// current_step, product_id, sum, term, and ref_id are re-seeded from the
// resolved calculator even on an existing registration. Without a product id
// an existing registration is returned untouched.
func (s *Service) FindOrCreate(ctx context.Context, sessionID string, hints CreationHints, profile visitor.Profile) (*Registration, error) {
	seed := s.calc.DeriveCreationFields(hints.ProductID, hints.Sum, hints.Term)

	reg, err := s.store.Find(ctx, sessionID)
	switch {
	case err == nil:
		if hints.ProductID != "" {
			reg.CurrentStep = FirstStep
			reg.ProductID = seed.ProductID
			reg.Sum = seed.Sum
			reg.Term = seed.Term
			reg.RefID = hints.RefID
			if err := s.store.Save(ctx, reg); err != nil {
				return nil, apperrors.Wrap(apperrors.CodeStorageWrite, "re-seed registration", err)
			}
		}
	case errors.Is(err, ErrNotFound):
		reg = &Registration{
			SessionID:   sessionID,
			CurrentStep: FirstStep,
			MaxStep:     FirstStep,
			ProductID:   seed.ProductID,
			Sum:         seed.Sum,
			Term:        seed.Term,
			RefID:       hints.RefID,
			PaymentData: map[string]any{},
			Fields:      map[string]any{},
		}
		if err := s.store.Create(ctx, reg); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStorageWrite, "create registration", err)
		}
		s.logger.InfoContext(ctx, "registration created",
			"session_id", sessionID,
			"product_id", reg.ProductID,
		)
		if err := s.audit.Emit(ctx, audit.NewEvent(sessionID, audit.ActionRegistrationCreated, map[string]string{
			"product_id": reg.ProductID,
		})); err != nil {
			s.logger.WarnContext(ctx, "audit emit failed", "error", err.Error())
		}
	default:
		return nil, apperrors.Wrap(apperrors.CodeStorageRead, "find registration", err)
	}

	if _, err := s.visitors.Ensure(ctx, sessionID, profile); err != nil {
		return nil, err
	}
	return reg, nil
}

// Find returns the registration without creating it.
func (s *Service) Find(ctx context.Context, sessionID string) (*Registration, error) {
	return s.store.Find(ctx, sessionID)
}

// ApplyFieldUpdate sets a single attribute addressed by its external name. A
// missing value coerces to the empty string, and the write is skipped when
// the stored value already matches. The operation reports success either way.
// max_step ratchets up with current_step here just as in bulk updates.
func (s *Service) ApplyFieldUpdate(ctx context.Context, reg *Registration, externalName string, value any) error {
	name := fields.ToInternal(externalName)
	if value == nil {
		value = ""
	}
	if !s.setAttribute(reg, name, value) {
		return nil
	}
	if reg.CurrentStep > reg.MaxStep {
		reg.MaxStep = reg.CurrentStep
	}
	if err := s.store.Save(ctx, reg); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageWrite, "save field update", err)
	}
	return nil
}

// ApplyBulkUpdate applies a set of updates in one persist. payment_data
// merges key-wise into the stored mapping (new values win); every other key
// overwrites. When the incoming current_step equals the final step, the step
// controller re-drives the registration into the payment phase afterwards.
func (s *Service) ApplyBulkUpdate(ctx context.Context, reg *Registration, updates map[string]any) error {
	finalStepReached := false

	for externalName, value := range updates {
		name := fields.ToInternal(externalName)
		if name == "payment_data" {
			if incoming, ok := value.(map[string]any); ok {
				merged := cloneMap(reg.PaymentData)
				if merged == nil {
					merged = map[string]any{}
				}
				for k, v := range incoming {
					merged[k] = v
				}
				reg.PaymentData = merged
			}
			continue
		}
		s.setAttribute(reg, name, value)
		if name == "current_step" {
			if step, ok := toInt(value); ok && step == FinalStep {
				finalStepReached = true
			}
		}
	}

	if reg.CurrentStep > reg.MaxStep {
		reg.MaxStep = reg.CurrentStep
	}

	if err := s.store.Save(ctx, reg); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageWrite, "save bulk update", err)
	}

	if finalStepReached && s.advancer != nil {
		if err := s.advancer.AdvanceToPayment(ctx, reg); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the registration. Attachment cleanup cascades in the
// storage layer.
func (s *Service) Delete(ctx context.Context, reg *Registration) error {
	if err := s.store.Delete(ctx, reg.SessionID); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageWrite, "delete registration", err)
	}
	s.logger.InfoContext(ctx, "registration deleted", "session_id", reg.SessionID)
	if err := s.audit.Emit(ctx, audit.NewEvent(reg.SessionID, audit.ActionRegistrationDeleted, nil)); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err.Error())
	}
	return nil
}

// ProjectedView returns the client-facing field map: every persisted
// attribute except the exclusion set, external naming, nil replaced by the
// empty string.
func (s *Service) ProjectedView(reg *Registration) map[string]any {
	return fields.Project(reg.Attributes(), excludedFromView)
}

// setAttribute routes a value to its typed field or the business-field bag
// and reports whether anything changed.
func (s *Service) setAttribute(reg *Registration, name string, value any) bool {
	switch name {
	case "current_step":
		if v, ok := toInt(value); ok && v != reg.CurrentStep {
			reg.CurrentStep = v
			return true
		}
	case "max_step":
		if v, ok := toInt(value); ok && v != reg.MaxStep {
			reg.MaxStep = v
			return true
		}
	case "autosave":
		if v, ok := value.(bool); ok && v != reg.Autosave {
			reg.Autosave = v
			return true
		}
	case "sum":
		if v, ok := toInt64(value); ok && (reg.Sum == nil || *reg.Sum != v) {
			reg.Sum = &v
			return true
		}
	case "term":
		if v, ok := toInt(value); ok && (reg.Term == nil || *reg.Term != v) {
			reg.Term = &v
			return true
		}
	case "product_id":
		if v, ok := value.(string); ok && v != reg.ProductID {
			reg.ProductID = v
			return true
		}
	case "ref_id":
		if v, ok := value.(string); ok && v != reg.RefID {
			reg.RefID = v
			return true
		}
	case "order_id":
		// Immutable once assigned; a later mismatched value never overwrites.
		if v, ok := value.(string); ok && reg.OrderID == "" && v != "" {
			reg.OrderID = v
			return true
		}
	case "payment_data":
		if v, ok := value.(map[string]any); ok {
			reg.PaymentData = v
			return true
		}
	default:
		if reg.Fields == nil {
			reg.Fields = map[string]any{}
		}
		if existing, ok := reg.Fields[name]; !ok || !reflect.DeepEqual(existing, value) {
			reg.Fields[name] = value
			return true
		}
	}
	return false
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
