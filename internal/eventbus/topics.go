package eventbus

const DefaultTopic = "planner.events"

// Event type prefixes; the store operation is appended, e.g.
// "formation.added".
const (
	TypeFormation = "formation."
	TypeTeam      = "team."
)

const Source = "defense-planner"
