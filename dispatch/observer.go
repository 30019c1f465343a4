package dispatch

import "github.com/CerealNotFound/function-calling-server/observability"

// Dispatch event types emitted during a cycle.
const (
	EventCycleStart     observability.EventType = "dispatch.cycle.start"
	EventCycleComplete  observability.EventType = "dispatch.cycle.complete"
	EventModelCall      observability.EventType = "dispatch.model.call"
	EventActionStart    observability.EventType = "dispatch.action.start"
	EventActionComplete observability.EventType = "dispatch.action.complete"
	EventReply          observability.EventType = "dispatch.reply"
	EventFollowUpFailed observability.EventType = "dispatch.followup.failed"
	EventError          observability.EventType = "dispatch.error"
)
