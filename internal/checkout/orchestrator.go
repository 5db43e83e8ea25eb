// Package checkout runs the payment flow as an explicit state machine:
// load the gateway script, create a backend order, open the widget, verify
// the completion token. Single attempt, no retries; a retry is a fresh
// orchestrator run from idle.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/coderarham/storefront/internal/domain"
	"github.com/coderarham/storefront/internal/gateway"
)

var (
	// ErrDismissed is returned by a widget when the user closes it without
	// completing payment.
	ErrDismissed = errors.New("widget dismissed")

	// ErrIllegalTransition reports a state change the transition table does
	// not allow.
	ErrIllegalTransition = errors.New("illegal checkout transition")
)

// ScriptLoader fetches the gateway's client script into the page context.
type ScriptLoader interface {
	Load(ctx context.Context) error
}

// OrderCreator asks the backend for a gateway order. The backend computes
// the authoritative amount; the orchestrator never supplies one.
type OrderCreator interface {
	CreateOrder(ctx context.Context, userID, currency, receipt string) (*gateway.Order, error)
}

// Completion is the signed token the widget hands back on success.
type Completion struct {
	OrderID   string
	PaymentID string
	Signature string
}

// WidgetOptions prefills the gateway's modal.
type WidgetOptions struct {
	KeyID    string
	OrderID  string
	Amount   int64
	Currency string
	Name     string
	Email    string
	Contact  string
}

// Widget is the gateway's modal. Open blocks until the user completes or
// dismisses it; dismissal is ErrDismissed.
type Widget interface {
	Open(ctx context.Context, opts WidgetOptions) (*Completion, error)
}

// Verifier checks a completion token server-side. The bool is the explicit
// success flag; reason explains a false flag.
type Verifier interface {
	Verify(ctx context.Context, orderID, paymentID, signature string) (bool, string, error)
}

// Callbacks deliver the terminal outcome. Exactly one fires per Run.
type Callbacks struct {
	OnSuccess func(orderID, paymentID string)
	OnFailure func(reason string)
}

type Orchestrator struct {
	loader   ScriptLoader
	orders   OrderCreator
	widget   Widget
	verifier Verifier

	state domain.CheckoutState
}

func NewOrchestrator(loader ScriptLoader, orders OrderCreator, widget Widget, verifier Verifier) *Orchestrator {
	return &Orchestrator{
		loader:   loader,
		orders:   orders,
		widget:   widget,
		verifier: verifier,
		state:    domain.CheckoutStateIdle,
	}
}

// State reports the current flow state, for UI progress display.
func (o *Orchestrator) State() domain.CheckoutState {
	return o.state
}

// transition is the single place state changes; an edge missing from the
// table is a programming error.
func (o *Orchestrator) transition(to domain.CheckoutState) error {
	if !domain.CanTransitionTo(o.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.state, to)
	}
	log.Printf("checkout: %s -> %s", o.state, to)
	o.state = to
	return nil
}

type RunRequest struct {
	UserID   string
	Currency string
	Receipt  string
	Name     string
	Email    string
	Contact  string
	KeyID    string
}

// Run drives one checkout attempt from idle to a terminal state. It never
// returns an error to the caller for business failures; those go through
// cb.OnFailure. The returned state is terminal.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest, cb Callbacks) domain.CheckoutState {
	if o.state != domain.CheckoutStateIdle {
		o.fail(cb, "checkout already started")
		return o.state
	}

	if err := o.transition(domain.CheckoutStateScriptLoading); err != nil {
		o.fail(cb, err.Error())
		return o.state
	}
	if err := o.loader.Load(ctx); err != nil {
		o.toTerminal(domain.CheckoutStateFailed)
		o.fail(cb, fmt.Sprintf("failed to load payment script: %v", err))
		return o.state
	}

	order, err := o.orders.CreateOrder(ctx, req.UserID, req.Currency, req.Receipt)
	if err != nil {
		o.toTerminal(domain.CheckoutStateFailed)
		o.fail(cb, fmt.Sprintf("failed to create order: %v", err))
		return o.state
	}
	if err := o.transition(domain.CheckoutStateOrderCreated); err != nil {
		o.fail(cb, err.Error())
		return o.state
	}

	if err := o.transition(domain.CheckoutStateWidgetOpen); err != nil {
		o.fail(cb, err.Error())
		return o.state
	}
	completion, err := o.widget.Open(ctx, WidgetOptions{
		KeyID:    req.KeyID,
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Name:     req.Name,
		Email:    req.Email,
		Contact:  req.Contact,
	})
	if err != nil {
		if errors.Is(err, ErrDismissed) {
			o.toTerminal(domain.CheckoutStateCancelled)
			o.fail(cb, "cancelled by user")
			return o.state
		}
		o.toTerminal(domain.CheckoutStateFailed)
		o.fail(cb, fmt.Sprintf("widget error: %v", err))
		return o.state
	}

	if err := o.transition(domain.CheckoutStateVerifying); err != nil {
		o.fail(cb, err.Error())
		return o.state
	}
	ok, reason, err := o.verifier.Verify(ctx, completion.OrderID, completion.PaymentID, completion.Signature)
	if err != nil {
		o.toTerminal(domain.CheckoutStateFailed)
		o.fail(cb, fmt.Sprintf("verification call failed: %v", err))
		return o.state
	}
	if !ok {
		o.toTerminal(domain.CheckoutStateFailed)
		if reason == "" {
			reason = "payment verification failed"
		}
		o.fail(cb, reason)
		return o.state
	}

	o.toTerminal(domain.CheckoutStateSucceeded)
	if cb.OnSuccess != nil {
		cb.OnSuccess(completion.OrderID, completion.PaymentID)
	}
	return o.state
}

func (o *Orchestrator) toTerminal(to domain.CheckoutState) {
	if err := o.transition(to); err != nil {
		log.Printf("checkout: %v", err)
		o.state = domain.CheckoutStateFailed
	}
}

func (o *Orchestrator) fail(cb Callbacks, reason string) {
	log.Printf("checkout failed: %s", reason)
	if cb.OnFailure != nil {
		cb.OnFailure(reason)
	}
}
