package events

// Scheduler drives the event pipeline phases once per network tick.
//
// Phase order within a tick is fixed: Reset on the just-disconnected edge,
// then Receive while the server runs, then Send while the client is
// connected, then ResendLocally when the local process holds authority.
// ResendLocally runs strictly after Send so authority-held events are never
// counted twice. Event types inside one phase run in registration order.
type Scheduler struct {
	registry     *Registry
	wasConnected bool
}

func NewScheduler(registry *Registry) *Scheduler {
	return &Scheduler{registry: registry}
}

// RunTick executes the phases applicable to the session's current
// connection and authority state. Ticks are serialized by the caller; no
// state here is shared across concurrent invocations.
func (s *Scheduler) RunTick(session *Session) {
	connected := session.ClientConnected()
	if s.wasConnected && !connected {
		s.registry.runReset(session)
	}
	s.wasConnected = connected

	if session.ServerRunning() {
		s.registry.runReceive(session)
	}
	if connected {
		s.registry.runSend(session)
	}
	if session.HasAuthority() {
		s.registry.runResendLocally(session)
	}
}
