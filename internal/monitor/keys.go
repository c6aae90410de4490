package monitor

import "github.com/charmbracelet/bubbles/key"

type keymap struct {
	retry    key.Binding
	activate key.Binding
	quit     key.Binding
}

var defaultKeymap = keymap{
	retry: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "retry"),
	),
	activate: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "activate tokens"),
	),
	quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
