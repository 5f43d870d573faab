package domain

// GateOutcome is the result class of an entitlement check.
type GateOutcome string

const (
	// GatePassThrough means the command is not gated for this caller
	GatePassThrough GateOutcome = "pass_through"
	// GateBlocked means the caller holds an entitlement that cannot be used now
	GateBlocked GateOutcome = "blocked"
	// GateConsumed means one use was spent
	GateConsumed GateOutcome = "consumed"
)

// BlockReason explains a blocked decision.
type BlockReason string

const (
	BlockExhausted BlockReason = "exhausted"
	BlockCooldown  BlockReason = "cooldown"
)

// GateDecision is what the gate tells the front-end about a command invocation.
type GateDecision struct {
	Outcome          GateOutcome `json:"outcome"`
	Reason           BlockReason `json:"reason,omitempty"`
	Command          string      `json:"command"`
	ItemID           int64       `json:"item_id,omitempty"`
	GrantID          int64       `json:"grant_id,omitempty"`
	Remaining        int         `json:"remaining"`
	Max              int         `json:"max"`
	RemainingMinutes int         `json:"remaining_minutes,omitempty"`
}

// Allowed reports whether the front-end may run the command.
func (d GateDecision) Allowed() bool {
	return d.Outcome != GateBlocked
}

// Err converts a blocked decision to its domain error, nil otherwise.
func (d GateDecision) Err() error {
	if d.Outcome != GateBlocked {
		return nil
	}
	if d.Reason == BlockCooldown {
		return &CooldownError{Command: d.Command, RemainingMinutes: d.RemainingMinutes}
	}
	return &ExhaustedError{Command: d.Command}
}
