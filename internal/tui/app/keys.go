package app

import "github.com/charmbracelet/bubbles/key"

// keyMap описывает горячие клавиши микшера
type keyMap struct {
	Switch      key.Binding
	PlayPause   key.Binding
	FadeIn      key.Binding
	FadeOut     key.Binding
	Next        key.Binding
	CrossAB     key.Binding
	CrossBA     key.Binding
	VolumeUp    key.Binding
	VolumeDown  key.Binding
	MasterUp    key.Binding
	MasterDown  key.Binding
	Mute        key.Binding
	MuteMaster  key.Binding
	FadeLonger  key.Binding
	FadeShorter key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Switch:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "сменить деку")),
		PlayPause:   key.NewBinding(key.WithKeys(" "), key.WithHelp("пробел", "пуск/пауза")),
		FadeIn:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "нарастание")),
		FadeOut:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "затухание")),
		Next:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "следующий")),
		CrossAB:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "A → B")),
		CrossBA:     key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "B → A")),
		VolumeUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "громкость деки")),
		VolumeDown:  key.NewBinding(key.WithKeys("-")),
		MasterUp:    key.NewBinding(key.WithKeys("]"), key.WithHelp("[/]", "мастер")),
		MasterDown:  key.NewBinding(key.WithKeys("[")),
		Mute:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute деки")),
		MuteMaster:  key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "mute мастера")),
		FadeLonger:  key.NewBinding(key.WithKeys("."), key.WithHelp(",/.", "длительность фейда")),
		FadeShorter: key.NewBinding(key.WithKeys(",")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "справка")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "выход")),
	}
}

// ShortHelp реализует help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Switch, k.PlayPause, k.FadeIn, k.FadeOut, k.CrossAB, k.Help, k.Quit}
}

// FullHelp реализует help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Switch, k.PlayPause, k.Next},
		{k.FadeIn, k.FadeOut, k.CrossAB, k.CrossBA},
		{k.VolumeUp, k.MasterUp, k.Mute, k.MuteMaster},
		{k.FadeLonger, k.Help, k.Quit},
	}
}
