package model

// GateState is the tag of the pending action gate variant.
type GateState int

const (
	GateEmpty GateState = iota
	GateArmed
)

func (s GateState) String() string {
	if s == GateArmed {
		return "armed"
	}
	return "empty"
}

// Gate holds at most one ToolProposal. The zero value is Empty.
type Gate struct {
	proposal  *ToolProposal
	resolving bool // decision sent, round trip not finished
}

func (g *Gate) State() GateState {
	if g.proposal == nil {
		return GateEmpty
	}
	return GateArmed
}

// Arm moves Empty → Armed. An armed gate is left untouched.
func (g *Gate) Arm(p ToolProposal) error {
	if g.proposal != nil {
		return ErrGateArmed
	}
	g.proposal = &p
	g.resolving = false
	return nil
}

// Proposal returns the armed proposal, if any. Side-effect free.
func (g *Gate) Proposal() (ToolProposal, bool) {
	if g.proposal == nil {
		return ToolProposal{}, false
	}
	return *g.proposal, true
}

// Resolving reports whether a decision for the armed proposal is in flight.
func (g *Gate) Resolving() bool {
	return g.proposal != nil && g.resolving
}

// beginResolve marks the proposal as decided; a second decision for the same
// proposal is rejected.
func (g *Gate) beginResolve() (ToolProposal, error) {
	if g.proposal == nil || g.resolving {
		return ToolProposal{}, ErrNoProposal
	}
	g.resolving = true
	return *g.proposal, nil
}

// Resolve moves Armed → Empty unconditionally.
func (g *Gate) Resolve() {
	g.proposal = nil
	g.resolving = false
}

// Clear forces Empty from any state without contacting the backend.
func (g *Gate) Clear() {
	g.Resolve()
}
