package domain

// Guidance is the delegation payload shown to the operator with an alert.
type Guidance struct {
	ClientWants    string
	OperatorTasks  []string
	GeneratedTasks []string
	Prompt         string
	OutputType     string
	Delivery       string
	PriceRange     string
	TimeEstimate   string
}

// Template is a named archetype of delegable work. Templates are static
// configuration and are never mutated after startup.
type Template struct {
	Key            string
	Name           string
	Keywords       []string
	BaseDifficulty int // 1 (easiest) .. 5
	Guidance       Guidance
}
