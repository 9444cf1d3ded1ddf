package domain

// Status is the lifecycle state of an uploaded file. Transitions only move
// forward along the table below; processed and failed are absorbing.
type Status string

const (
	StatusPending    Status = "pending"
	StatusUploading  Status = "uploading"
	StatusSaving     Status = "saving"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusFailed     Status = "failed"
)

// transitions maps a state to the states reachable from it. An absent key is
// a terminal state.
var transitions = map[Status][]Status{
	StatusPending:    {StatusUploading, StatusSaving, StatusFailed},
	StatusUploading:  {StatusSaving, StatusFailed},
	StatusSaving:     {StatusProcessing, StatusFailed},
	StatusProcessing: {StatusProcessed, StatusFailed},
}

func (s Status) Terminal() bool {
	return s == StatusProcessed || s == StatusFailed
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}

	return false
}

// TransitionSources returns every state from which to is reachable. Status
// updates use it as an in-SQL guard, so a lost race degrades to a no-op
// instead of a backward write.
func TransitionSources(to Status) []Status {
	var sources []Status
	for from, nexts := range transitions {
		for _, next := range nexts {
			if next == to {
				sources = append(sources, from)
			}
		}
	}

	return sources
}
