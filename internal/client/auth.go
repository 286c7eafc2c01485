package client

import "context"

// FieldKind is the input type of one auth form field.
type FieldKind string

const (
	FieldText        FieldKind = "text"
	FieldEmail       FieldKind = "email"
	FieldNumber      FieldKind = "number"
	FieldPassword    FieldKind = "password"
	FieldNewPassword FieldKind = "new-password"
)

// FormFieldSpec describes one field of a form step.
type FormFieldSpec struct {
	Name string
	Kind FieldKind
}

// AuthStep is one server-dictated step of the login negotiation. Exactly one
// of Choice, Form, Wait or Session is set; a nil step from the server means
// the negotiation completed without a session (treated as success upstream).
type AuthStep struct {
	CanGoBack bool
	Choice    *ChoiceStep
	Form      *FormStep
	Wait      *WaitStep
	Session   *Session
}

// ChoiceStep offers a list of labeled options.
type ChoiceStep struct {
	Title   string
	Options []string
}

// FormStep requests an ordered list of typed fields.
type FormStep struct {
	Title  string
	Fields []FormFieldSpec
}

// WaitStep is read-only: the server is doing something out of band.
type WaitStep struct {
	Title       string
	Description string
}

// FormValue is one submitted field, typed per the field kind: text and email
// as strings, number as a parsed integer, passwords as raw bytes.
type FormValue struct {
	String string
	Number int64
	Bytes  []byte
}

// AuthResponse answers the current step. Exactly one of Choice or Form is
// set; a zero response requests the first step.
type AuthResponse struct {
	Choice *string
	Form   []FormValue
}

// AuthAPI is the authentication negotiation surface of a homeserver.
type AuthAPI interface {
	// BeginAuth opens a negotiation and returns its id.
	BeginAuth(ctx context.Context) (string, error)

	// NextAuthStep submits resp and returns the next step, or nil when the
	// negotiation is complete.
	NextAuthStep(ctx context.Context, authID string, resp AuthResponse) (*AuthStep, error)

	// PrevAuthStep re-requests the previous step.
	PrevAuthStep(ctx context.Context, authID string) (*AuthStep, error)
}
