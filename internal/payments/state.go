package payments

// State is the client-visible capture status, modeled as a tagged union so
// a switch over the concrete types covers every case. It exists to drive
// user feedback during the simulated capture step and is not necessarily
// mirrored by a backend state of the same name.
type State interface {
	isState()
	// Phase returns the wire label of the state.
	Phase() string
}

// Idle means no submission attempt is in progress. Each new attempt must
// reset to Idle first so no stale banner survives a retry.
type Idle struct{}

// Pending means a submission attempt has started.
type Pending struct{}

// Processing means the capture is underway.
type Processing struct{}

// Success carries the assigned payment reference.
type Success struct {
	Ref string
}

// Failed carries the reason the capture (and therefore the submission)
// failed. No partial booking exists in this state.
type Failed struct {
	Reason string
}

func (Idle) isState()       {}
func (Pending) isState()    {}
func (Processing) isState() {}
func (Success) isState()    {}
func (Failed) isState()     {}

func (Idle) Phase() string       { return "idle" }
func (Pending) Phase() string    { return "pending" }
func (Processing) Phase() string { return "processing" }
func (Success) Phase() string    { return "success" }
func (Failed) Phase() string     { return "failed" }
