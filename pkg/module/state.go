package module

import "github.com/Enginex0/nomount-vfs/internal/errx"

type State string

const (
	StateLoaded       State = "loaded"
	StateSpecializing State = "specializing"
	StateDone         State = "done"
)

var allowedTransitions = map[State]map[State]bool{
	StateLoaded: {
		StateSpecializing: true,
		StateDone:         true,
	},
	StateSpecializing: {
		StateDone: true,
	},
	StateDone: {},
}

func validateTransition(from, to State) error {
	if !allowedTransitions[from][to] {
		return errx.With(ErrInvalidState, " %q -> %q", from, to)
	}
	return nil
}
