package engine

import "errors"

// Error kinds returned by engine operations. Concrete failures wrap one of
// these, so callers classify with errors.Is or KindOf.
var (
	ErrNotFound           = errors.New("not found")
	ErrNotParticipant     = errors.New("not a participant")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrInvalidState       = errors.New("invalid state")
	ErrAlreadyActed       = errors.New("already acted")
	ErrPaymentRequired    = errors.New("payment required")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrOwnershipViolation = errors.New("ownership violation")
	ErrRuleViolation      = errors.New("rule violation")
	ErrInternal           = errors.New("internal error")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrNotFound, "not_found"},
	{ErrNotParticipant, "not_participant"},
	{ErrNotYourTurn, "not_your_turn"},
	{ErrInvalidState, "invalid_state"},
	{ErrAlreadyActed, "already_acted"},
	{ErrPaymentRequired, "payment_required"},
	{ErrInsufficientFunds, "insufficient_funds"},
	{ErrOwnershipViolation, "ownership_violation"},
	{ErrRuleViolation, "rule_violation"},
	{ErrInternal, "internal"},
}

// KindOf returns the stable reason code for an error. Unclassified errors
// are reported as "internal".
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
