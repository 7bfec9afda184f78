package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	Dec        key.Binding
	Inc        key.Binding
	DecFast    key.Binding
	IncFast    key.Binding
	Neutral    key.Binding
	PrevPreset key.Binding
	NextPreset key.Binding
	NextOutput key.Binding
	PrevOutput key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Save       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:     key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle block")),
		Dec:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "strength -1 step")),
		Inc:        key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "strength +1 step")),
		DecFast:    key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("H", "strength -5 steps")),
		IncFast:    key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("L", "strength +5 steps")),
		Neutral:    key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset to 1.00")),
		PrevPreset: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous preset")),
		NextPreset: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next preset")),
		NextOutput: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next replayed output")),
		PrevOutput: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous replayed output")),
		PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Save:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save state")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) helpLine() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Dec, k.Inc, k.NextPreset, k.Save, k.Help, k.Quit}
}

func (k keyMap) all() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Toggle, k.Dec, k.Inc, k.DecFast, k.IncFast, k.Neutral,
		k.PrevPreset, k.NextPreset, k.NextOutput, k.PrevOutput, k.PageUp, k.PageDown, k.Save, k.Help, k.Quit,
	}
}
