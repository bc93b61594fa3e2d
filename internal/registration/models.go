package registration

import "time"

// Step ordinals for this deployment. FinalStep is the last data-entry stage;
// reaching it hands control to the payment phase, which runs at PaymentStep.
const (
	FirstStep   = 1
	PaymentStep = 5
	FinalStep   = 6
)

// Registration is the mutable, session-scoped workflow record. One exists per
// session identity; it is created lazily on first access and logically
// deleted on explicit delete.
type Registration struct {
	SessionID   string
	CurrentStep int
	MaxStep     int
	ProductID   string
	Sum         *int64
	Term        *int
	OrderID     string
	RefID       string
	Autosave    bool
	PaymentData map[string]any
	// Fields holds arbitrary business attributes (contact info, verification
	// timestamps, ...) keyed by internal snake_case name.
	Fields map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
}

// excludedFromView lists the internal attribute names that never appear in a
// client-facing projection: identity/audit columns, payment internals,
// credentials, and verification codes. Verification timestamps stay visible.
var excludedFromView = []string{
	"id",
	"created_at",
	"updated_at",
	"customer_id",
	"payment",
	"payment_data",
	"password",
	"session_id",
	"phone_verification_code",
	"email_verification_code",
	"ref_id",
}

// Attributes flattens the registration into an internal-named attribute map,
// the shape Project operates on.
func (r *Registration) Attributes() map[string]any {
	attrs := make(map[string]any, len(r.Fields)+10)
	for key, value := range r.Fields {
		attrs[key] = value
	}
	attrs["session_id"] = r.SessionID
	attrs["current_step"] = r.CurrentStep
	attrs["max_step"] = r.MaxStep
	attrs["autosave"] = r.Autosave
	attrs["ref_id"] = r.RefID
	if r.ProductID != "" {
		attrs["product_id"] = r.ProductID
	} else {
		attrs["product_id"] = nil
	}
	if r.Sum != nil {
		attrs["sum"] = *r.Sum
	} else {
		attrs["sum"] = nil
	}
	if r.Term != nil {
		attrs["term"] = *r.Term
	} else {
		attrs["term"] = nil
	}
	if r.OrderID != "" {
		attrs["order_id"] = r.OrderID
	} else {
		attrs["order_id"] = nil
	}
	attrs["payment_data"] = r.PaymentData
	return attrs
}

// Clone returns a deep copy so callers can mutate without aliasing the
// store's record.
func (r *Registration) Clone() *Registration {
	out := *r
	if r.Sum != nil {
		sum := *r.Sum
		out.Sum = &sum
	}
	if r.Term != nil {
		term := *r.Term
		out.Term = &term
	}
	out.PaymentData = cloneMap(r.PaymentData)
	out.Fields = cloneMap(r.Fields)
	return &out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
