package resource

// Sub-resource endpoint names are a fixed contract with the backend.
const (
	EndpointEvents                  = "events"
	EndpointEventsLock              = "events_lock"
	EndpointEventsUnlock            = "events_unlock"
	EndpointEventsSpike             = "events_spike"
	EndpointEventsUnspike           = "events_unspike"
	EndpointEventsCancel            = "events_cancel"
	EndpointEventsReschedule        = "events_reschedule"
	EndpointEventsPostpone          = "events_postpone"
	EndpointEventsUpdateTime        = "events_update_time"
	EndpointEventsUpdateRepetitions = "events_update_repetitions"
	EndpointEventsPost              = "events_post"

	EndpointPlanning        = "planning"
	EndpointPlanningLock    = "planning_lock"
	EndpointPlanningUnlock  = "planning_unlock"
	EndpointPlanningSpike   = "planning_spike"
	EndpointPlanningUnspike = "planning_unspike"
)
