package form

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Predict key.Binding
	Reset   key.Binding
	History key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:    key.NewBinding(key.WithKeys("down", "tab"), key.WithHelp("↓/Tab", "Next")),
		Prev:    key.NewBinding(key.WithKeys("up", "shift+tab"), key.WithHelp("↑", "Prev")),
		Predict: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("Ctrl+P", "Predict")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Reset")),
		History: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "History")),
	}
}
