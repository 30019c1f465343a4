package protocol

// Tool is an action declared to the model.
// Parameters uses JSON Schema format to describe the action's input.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolChoiceMode is the selection policy passed to the model.
type ToolChoiceMode string

const (
	// ToolChoiceAuto lets the model decide between replying and requesting actions.
	ToolChoiceAuto ToolChoiceMode = "auto"
	// ToolChoiceNone forbids action requests.
	ToolChoiceNone ToolChoiceMode = "none"
	// ToolChoiceRequired forces at least one action request.
	ToolChoiceRequired ToolChoiceMode = "required"
	// ToolChoiceFunction forces a single named action.
	ToolChoiceFunction ToolChoiceMode = "function"
)

// ToolChoice selects how the model may use the declared actions.
// Name is only meaningful with ToolChoiceFunction.
type ToolChoice struct {
	Mode ToolChoiceMode `json:"mode"`
	Name string         `json:"name,omitempty"`
}

// AutoChoice returns the default selection policy.
func AutoChoice() ToolChoice {
	return ToolChoice{Mode: ToolChoiceAuto}
}

// ForceTool returns a policy forcing the model to request the named action.
func ForceTool(name string) ToolChoice {
	return ToolChoice{Mode: ToolChoiceFunction, Name: name}
}

// ParseToolChoice converts a configuration string into a ToolChoice.
// Any value other than auto, none or required names a forced action.
// The empty string maps to auto.
func ParseToolChoice(s string) ToolChoice {
	switch ToolChoiceMode(s) {
	case "", ToolChoiceAuto:
		return AutoChoice()
	case ToolChoiceNone, ToolChoiceRequired:
		return ToolChoice{Mode: ToolChoiceMode(s)}
	default:
		return ForceTool(s)
	}
}
