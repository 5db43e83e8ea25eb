package domain

type CheckoutState string

const (
	CheckoutStateIdle          CheckoutState = "IDLE"
	CheckoutStateScriptLoading CheckoutState = "SCRIPT_LOADING"
	CheckoutStateOrderCreated  CheckoutState = "ORDER_CREATED"
	CheckoutStateWidgetOpen    CheckoutState = "WIDGET_OPEN"
	CheckoutStateVerifying     CheckoutState = "VERIFYING"
	CheckoutStateSucceeded     CheckoutState = "SUCCEEDED"
	CheckoutStateFailed        CheckoutState = "FAILED"
	CheckoutStateCancelled     CheckoutState = "CANCELLED"
)

// checkoutTransitions is the full transition table of the payment flow.
// Every step may fail into FAILED; only an open widget can be dismissed
// into CANCELLED. Terminal states have no outgoing edges — a retry is a
// fresh run from IDLE, never a resumed one.
var checkoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutStateIdle:          {CheckoutStateScriptLoading},
	CheckoutStateScriptLoading: {CheckoutStateOrderCreated, CheckoutStateFailed},
	CheckoutStateOrderCreated:  {CheckoutStateWidgetOpen, CheckoutStateFailed},
	CheckoutStateWidgetOpen:    {CheckoutStateVerifying, CheckoutStateCancelled, CheckoutStateFailed},
	CheckoutStateVerifying:     {CheckoutStateSucceeded, CheckoutStateFailed},
}

func CanTransitionTo(from, to CheckoutState) bool {
	for _, next := range checkoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutStateSucceeded || s == CheckoutStateFailed || s == CheckoutStateCancelled
}

// String representation (for logging)
func (s CheckoutState) String() string {
	return string(s)
}
