package deletebyquery

// phase is a step of the delete-by-query state machine.
type phase int

const (
	phaseBrowsing phase = iota
	phaseCollecting
	phaseDeleting
	phaseWaiting
	phaseDeciding
	phaseDone
)

func (p phase) String() string {
	switch p {
	case phaseBrowsing:
		return "browsing"
	case phaseCollecting:
		return "collecting"
	case phaseDeleting:
		return "deleting"
	case phaseWaiting:
		return "waiting"
	case phaseDeciding:
		return "deciding"
	case phaseDone:
		return "done"
	default:
		return "unknown"
	}
}
