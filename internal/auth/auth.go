// Package auth walks the homeserver's step-based login protocol: a short
// lived state machine, independent of the chat session, whose state mirrors
// whatever step the server last dictated (choice, form, or wait).
package auth

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ravel-chat/ravel/internal/client"
	"github.com/ravel-chat/ravel/internal/textbuf"
)

// Field is one form field being filled in. New-password fields carry a second
// buffer for the confirmation value.
type Field struct {
	Spec    client.FormFieldSpec
	Buf     textbuf.Buffer
	Confirm textbuf.Buffer
}

// HasConfirm reports whether the field carries a confirmation buffer.
func (f *Field) HasConfirm() bool { return f.Spec.Kind == client.FieldNewPassword }

// Choice is the negotiator's state while the server offers labeled options.
type Choice struct {
	Title   string
	Options []string
	Sel     int
}

// Form is the negotiator's state while the server requests typed fields.
type Form struct {
	Title      string
	Fields     []Field
	FieldSel   int  // currently selected field
	ConfirmSel bool // the confirmation buffer of the selected field is active
	Editing    bool
}

// SelectedBuffer returns the buffer edits apply to.
func (f *Form) SelectedBuffer() *textbuf.Buffer {
	fld := &f.Fields[f.FieldSel]
	if f.ConfirmSel {
		return &fld.Confirm
	}
	return &fld.Buf
}

// SelectNext moves the selection one slot down, stepping through confirmation
// buffers. It reports whether the selection moved.
func (f *Form) SelectNext() bool {
	fld := &f.Fields[f.FieldSel]
	if fld.HasConfirm() && !f.ConfirmSel {
		f.ConfirmSel = true
		return true
	}
	if f.FieldSel+1 >= len(f.Fields) {
		return false
	}
	f.FieldSel++
	f.ConfirmSel = false
	return true
}

// SelectPrev moves the selection one slot up. It reports whether the
// selection moved.
func (f *Form) SelectPrev() bool {
	if f.ConfirmSel {
		f.ConfirmSel = false
		return true
	}
	if f.FieldSel == 0 {
		return false
	}
	f.FieldSel--
	if f.Fields[f.FieldSel].HasConfirm() {
		f.ConfirmSel = true
	}
	return true
}

// Waiting is the negotiator's read-only state.
type Waiting struct {
	Title       string
	Description string
}

// Negotiator drives one login negotiation. After Begin, exactly one of
// Choice/Form/Waiting is non-nil until the negotiation completes; Done
// reports completion and Session carries the result, which is nil when the
// server ended the step sequence without minting one.
type Negotiator struct {
	api    client.AuthAPI
	authID string

	choice  *Choice
	form    *Form
	waiting *Waiting

	canGoBack bool
	done      bool
	session   *client.Session
}

// New returns an idle negotiator.
func New(api client.AuthAPI) *Negotiator {
	return &Negotiator{api: api}
}

func (n *Negotiator) Choice() *Choice   { return n.choice }
func (n *Negotiator) Form() *Form       { return n.form }
func (n *Negotiator) Waiting() *Waiting { return n.waiting }

// CanGoBack reports whether the current step offers "go back".
func (n *Negotiator) CanGoBack() bool { return n.canGoBack }

// Done reports whether the negotiation ended.
func (n *Negotiator) Done() bool { return n.done }

// Abort ends the negotiation without a session.
func (n *Negotiator) Abort() {
	n.choice, n.form, n.waiting = nil, nil, nil
	n.done = true
}

// Session returns the minted session, if any, once Done.
func (n *Negotiator) Session() *client.Session { return n.session }

// Begin opens the negotiation and requests the first step.
func (n *Negotiator) Begin(ctx context.Context) error {
	id, err := n.api.BeginAuth(ctx)
	if err != nil {
		return fmt.Errorf("begin auth: %w", err)
	}
	n.authID = id
	step, err := n.api.NextAuthStep(ctx, n.authID, client.AuthResponse{})
	if err != nil {
		return fmt.Errorf("first auth step: %w", err)
	}
	n.setStep(step)
	return nil
}

// setStep replaces the current state with the server's step. A nil step, or a
// step carrying a session, ends the negotiation.
func (n *Negotiator) setStep(step *client.AuthStep) {
	n.choice, n.form, n.waiting = nil, nil, nil
	if step == nil {
		n.done = true
		n.canGoBack = false
		return
	}
	n.canGoBack = step.CanGoBack
	switch {
	case step.Session != nil:
		n.session = step.Session
		n.done = true
	case step.Choice != nil:
		n.choice = &Choice{Title: step.Choice.Title, Options: step.Choice.Options}
	case step.Form != nil:
		f := &Form{Title: step.Form.Title}
		for _, spec := range step.Form.Fields {
			f.Fields = append(f.Fields, Field{Spec: spec})
		}
		n.form = f
	case step.Wait != nil:
		n.waiting = &Waiting{Title: step.Wait.Title, Description: step.Wait.Description}
	default:
		// A step with no recognizable body ends the sequence.
		n.done = true
	}
}

// Back re-requests the previous step. On failure the current state holds.
func (n *Negotiator) Back(ctx context.Context) error {
	if !n.canGoBack || n.done {
		return nil
	}
	step, err := n.api.PrevAuthStep(ctx, n.authID)
	if err != nil {
		return nil // stay put, not fatal
	}
	n.setStep(step)
	return nil
}

// SubmitChoice sends the selected option verbatim.
func (n *Negotiator) SubmitChoice(ctx context.Context) error {
	if n.choice == nil || len(n.choice.Options) == 0 {
		return nil
	}
	opt := n.choice.Options[n.choice.Sel]
	step, err := n.api.NextAuthStep(ctx, n.authID, client.AuthResponse{Choice: &opt})
	if err != nil {
		return fmt.Errorf("submit choice: %w", err)
	}
	n.setStep(step)
	return nil
}

// ErrValidation marks a locally rejected form: nothing was sent.
type ErrValidation struct {
	Field  string
	Reason string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// SubmitForm converts every field to its typed value and sends the form.
// Local validation failures (a non-numeric value in a number field, or a
// new-password not matching its confirmation) reject the submission before
// any remote call and leave the state untouched.
func (n *Negotiator) SubmitForm(ctx context.Context) error {
	if n.form == nil {
		return nil
	}
	values := make([]client.FormValue, 0, len(n.form.Fields))
	for i := range n.form.Fields {
		fld := &n.form.Fields[i]
		switch fld.Spec.Kind {
		case client.FieldText, client.FieldEmail:
			values = append(values, client.FormValue{String: fld.Buf.String()})
		case client.FieldNumber:
			num, err := strconv.ParseInt(fld.Buf.String(), 10, 64)
			if err != nil {
				return &ErrValidation{Field: fld.Spec.Name, Reason: "not a number"}
			}
			values = append(values, client.FormValue{Number: num})
		case client.FieldPassword:
			values = append(values, client.FormValue{Bytes: []byte(fld.Buf.String())})
		case client.FieldNewPassword:
			if fld.Buf.String() != fld.Confirm.String() {
				return &ErrValidation{Field: fld.Spec.Name, Reason: "passwords do not match"}
			}
			values = append(values, client.FormValue{Bytes: []byte(fld.Buf.String())})
		default:
			values = append(values, client.FormValue{String: fld.Buf.String()})
		}
	}
	step, err := n.api.NextAuthStep(ctx, n.authID, client.AuthResponse{Form: values})
	if err != nil {
		return fmt.Errorf("submit form: %w", err)
	}
	n.setStep(step)
	return nil
}
