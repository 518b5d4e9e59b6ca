package agent

// Model selects which of several candidate click identities gets credit for
// a later conversion.
type Model string

const (
	FirstClick Model = "firstclick"
	LastClick  Model = "lastclick"
	FirstPaid  Model = "firstpaid"
	LastPaid   Model = "lastpaid" // default
)

// ParseModel maps a script parameter value to a Model, falling back to
// LastPaid for anything unrecognized.
func ParseModel(s string) Model {
	switch Model(s) {
	case FirstClick, LastClick, FirstPaid, LastPaid:
		return Model(s)
	default:
		return LastPaid
	}
}

// ShouldUpdate decides whether a freshly resolved identity replaces the one
// currently stored. An empty current identity always updates, regardless of
// model. For FirstPaid the caller passes the identity that blocks further
// updates (the paid-only cookie once the stored one exists).
func ShouldUpdate(currentID, newID string, model Model, isPaid bool) bool {
	if currentID == "" {
		return true
	}
	switch model {
	case FirstClick:
		return false
	case LastClick:
		return true
	case FirstPaid:
		// the first paid identity sticks
		return false
	case LastPaid:
		return isPaid
	default:
		return isPaid
	}
}
