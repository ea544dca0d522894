package entities

import "video-uploader/pkg/constants"

var transitions = map[string][]string{
	constants.StatusPending:    {constants.StatusQueued},
	constants.StatusQueued:     {constants.StatusProcessing},
	constants.StatusProcessing: {constants.StatusReady, constants.StatusFailed, constants.StatusBlocked},
}

// CanTransition reports whether the lifecycle allows moving from one status to another.
// Ready, Blocked and Failed have no outgoing transitions.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(status string) bool {
	switch status {
	case constants.StatusReady, constants.StatusBlocked, constants.StatusFailed:
		return true
	}
	return false
}
