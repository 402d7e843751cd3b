package registry

import "time"

// EventType identifies a registry change.
type EventType string

const (
	EventVersionCreated    EventType = "version_created"
	EventStageTransitioned EventType = "stage_transitioned"
	EventAliasSet          EventType = "alias_set"
	EventAliasDeleted      EventType = "alias_deleted"
)

// Event is published after a successful registry mutation.
type Event struct {
	Type      EventType
	Model     string
	Version   int
	Stage     Stage
	FromStage Stage
	Alias     string
	// Archived holds versions archived by a promotion.
	Archived  []int
	Timestamp time.Time
}

// VersionCreated builds the event for a newly registered version.
func VersionCreated(mv *ModelVersion) Event {
	return Event{
		Type:      EventVersionCreated,
		Model:     mv.Name(),
		Version:   mv.Version(),
		Stage:     mv.Stage(),
		Timestamp: time.Now(),
	}
}

// StageTransitioned builds the event for a completed stage change.
func StageTransitioned(from Stage, t *StageTransition) Event {
	archived := make([]int, 0, len(t.Archived))
	for _, a := range t.Archived {
		archived = append(archived, a.Version())
	}
	return Event{
		Type:      EventStageTransitioned,
		Model:     t.Version.Name(),
		Version:   t.Version.Version(),
		Stage:     t.Version.Stage(),
		FromStage: from,
		Archived:  archived,
		Timestamp: time.Now(),
	}
}

// AliasSet builds the event for an alias (re)binding.
func AliasSet(mv *ModelVersion, alias string) Event {
	return Event{
		Type:      EventAliasSet,
		Model:     mv.Name(),
		Version:   mv.Version(),
		Alias:     alias,
		Timestamp: time.Now(),
	}
}

// AliasDeleted builds the event for an alias removal.
func AliasDeleted(name, alias string) Event {
	return Event{
		Type:      EventAliasDeleted,
		Model:     name,
		Alias:     alias,
		Timestamp: time.Now(),
	}
}
