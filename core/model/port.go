package model

// PortDirection constrains which way power may flow through a port.
type PortDirection int

const (
	PortIn PortDirection = iota
	PortOut
	PortBidirectional
)

func (d PortDirection) String() string {
	switch d {
	case PortIn:
		return "in"
	case PortOut:
		return "out"
	case PortBidirectional:
		return "bidirectional"
	default:
		return "unknown"
	}
}

// Port is a connection point on a component. Two ports can be linked when
// they exchange the same kind of quantity and their directions are
// complementary, or either side is bidirectional.
type Port struct {
	Direction PortDirection
	Kind      Kind
}

// CompatibleWith reports whether a link between the two ports is valid.
func (p Port) CompatibleWith(o Port) bool {
	if p.Kind != o.Kind {
		return false
	}
	if p.Direction == PortBidirectional || o.Direction == PortBidirectional {
		return true
	}
	return p.Direction != o.Direction
}
