package console

import "github.com/aretw0/introspection"

// ConsoleState exposes the shell's session state.
type ConsoleState struct {
	Interactive bool   `json:"interactive"`
	Prompt      string `json:"prompt"`
	Executed    int    `json:"executed"`
	LastCommand string `json:"last_command,omitempty"`
	Refreshing  bool   `json:"refreshing"`
}

// State implements introspection.Introspectable.
func (c *Console) State() any {
	return ConsoleState{
		Interactive: c.interactive,
		Prompt:      c.prompt,
		Executed:    c.executed,
		LastCommand: c.last,
		Refreshing:  c.refresh != nil,
	}
}

// ComponentType implements introspection.Component.
func (c *Console) ComponentType() string {
	return "console"
}

var _ introspection.Introspectable = (*Console)(nil)
var _ introspection.Component = (*Console)(nil)
