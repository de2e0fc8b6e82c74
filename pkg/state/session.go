// Package state holds the mutable session state shared between the
// orchestrator and delegated sub-sessions: the artifact store, the plan
// tracker, and the scope markers identifying the subject under
// investigation.
//
// Ownership rules: artifacts and plan are shared by reference across
// delegation boundaries (sub-session writes are visible to the orchestrator
// once the delegation returns); the transcript is NOT part of this package —
// each reasoning loop owns its own history, and only the task description
// string crosses the boundary inward.
package state

// Session is the state bundle for one investigation. It is created once per
// top-level user request and discarded with the final answer; nothing here
// persists across requests.
type Session struct {
	Artifacts *ArtifactStore
	Plan      *PlanTracker

	// Scope markers. Advisory context for tools, not invariant-bearing.
	Repo     string // repository under investigation, "owner/repo"
	IssueRef string // issue reference, if the session started from one

	// Progress receives short human-readable events (tool executions,
	// delegations) for this session. Per-session so concurrent
	// investigations never see each other's events. Optional; nil disables
	// reporting.
	Progress func(event string)
}

// NewSession creates a fresh session with empty artifact store and plan.
func NewSession() *Session {
	return &Session{
		Artifacts: NewArtifactStore(),
		Plan:      NewPlanTracker(),
	}
}

// ForSubAgent derives the state a delegated sub-session sees: artifacts and
// plan shared by reference so writes merge forward, scope markers copied.
// The caller's transcript is deliberately absent.
func (s *Session) ForSubAgent() *Session {
	return &Session{
		Artifacts: s.Artifacts,
		Plan:      s.Plan,
		Repo:      s.Repo,
		IssueRef:  s.IssueRef,
		Progress:  s.Progress,
	}
}
