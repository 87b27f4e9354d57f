package input

// ActionDefinition describes an action with its default keys and a description.
type ActionDefinition struct {
	Name        string
	Keys        []string
	Description string
}

const (
	ActionClose     = "close"
	ActionPrev      = "prev"
	ActionNext      = "next"
	ActionZoomIn    = "zoom_in"
	ActionZoomOut   = "zoom_out"
	ActionZoomReset = "zoom_reset"
	ActionDownload  = "download"
)

var actionDefinitions = []ActionDefinition{
	{ActionClose, []string{"Escape"}, "Close the viewer"},
	{ActionPrev, []string{"ArrowLeft"}, "Previous screenshot"},
	{ActionNext, []string{"ArrowRight"}, "Next screenshot"},
	{ActionZoomIn, []string{"+", "="}, "Zoom in"},
	{ActionZoomOut, []string{"-", "_"}, "Zoom out"},
	{ActionZoomReset, []string{"0"}, "Reset zoom to 100%"},
	{ActionDownload, []string{"Ctrl+s"}, "Save the current screenshot"},
}

// Actions returns the action table.
func Actions() []ActionDefinition {
	return actionDefinitions
}

// LookupAction finds an action definition by name.
func LookupAction(name string) (ActionDefinition, bool) {
	for _, a := range actionDefinitions {
		if a.Name == name {
			return a, true
		}
	}
	return ActionDefinition{}, false
}

// DefaultKeybindings returns a fresh action to keys map from the table.
func DefaultKeybindings() map[string][]string {
	bindings := make(map[string][]string, len(actionDefinitions))
	for _, a := range actionDefinitions {
		bindings[a.Name] = append([]string(nil), a.Keys...)
	}
	return bindings
}
