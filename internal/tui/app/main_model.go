// Package app содержит основную логику TUI микшера
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/4lbertR/CueWave/internal/mixer"
	"github.com/4lbertR/CueWave/internal/tui/deck"
	"github.com/4lbertR/CueWave/internal/tui/tracklist"
	"github.com/4lbertR/CueWave/internal/utils"
)

const (
	// RefreshInterval - период опроса состояния микшера
	RefreshInterval = 50 * time.Millisecond
	// VolumeStep - шаг слайдеров громкости
	VolumeStep = 5.0
	// FadeStep - шаг слайдера длительности фейда
	FadeStep = 500 * time.Millisecond
	// MaxFade - верхняя граница слайдера длительности фейда
	MaxFade = 4 * time.Second
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0000ff")).
			MarginBottom(1)

	masterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00aa00"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)
)

// Mixer - операции движка, которыми управляет интерфейс
type Mixer interface {
	Snapshot(id mixer.DeckID) (mixer.DeckSnapshot, error)
	Master() mixer.MasterSnapshot
	Events() <-chan mixer.Event

	SelectTrack(id mixer.DeckID, track mixer.Track) error
	PlayPause(ctx context.Context, id mixer.DeckID) error
	FadeIn(ctx context.Context, id mixer.DeckID) error
	FadeOut(ctx context.Context, id mixer.DeckID) error
	FadeToNext(ctx context.Context, id mixer.DeckID) error
	Crossfade(ctx context.Context, from, to mixer.DeckID) error

	SetDeckVolume(id mixer.DeckID, position float64) error
	SetMasterVolume(position float64) error
	SetDeckMute(id mixer.DeckID, muted bool) error
	SetMasterMute(muted bool) error
	SetFadeDuration(d time.Duration) error
	FadeDuration() time.Duration
}

// tickMsg запускает очередной опрос состояния
type tickMsg time.Time

// eventMsg доставляет событие деки
type eventMsg mixer.Event

// GestureDoneMsg отправляется по завершении жеста или команды транспорта
type GestureDoneMsg struct {
	Name string
	Err  error
}

// MainModel представляет главную модель TUI: две деки и мастер
type MainModel struct {
	ctx   context.Context
	mixer Mixer

	focus  mixer.DeckID
	lists  map[mixer.DeckID]*tracklist.Model
	panels map[mixer.DeckID]*deck.Model
	master mixer.MasterSnapshot
	fade   time.Duration

	keys   keyMap
	help   help.Model
	status string
	err    error
	width  int
}

// NewMainModel создает главную модель поверх движка
func NewMainModel(ctx context.Context, m Mixer) *MainModel {
	model := &MainModel{
		ctx:    ctx,
		mixer:  m,
		focus:  mixer.DeckA,
		lists:  make(map[mixer.DeckID]*tracklist.Model, len(mixer.Decks)),
		panels: make(map[mixer.DeckID]*deck.Model, len(mixer.Decks)),
		keys:   newKeyMap(),
		help:   help.New(),
	}

	for _, id := range mixer.Decks {
		var playlist []mixer.Track
		if s, err := m.Snapshot(id); err == nil {
			playlist = s.Playlist
			// Курсор списка стоит на первом треке, он же выбран на деке
			if s.Selected == nil && len(playlist) > 0 {
				_ = m.SelectTrack(id, playlist[0])
			}
		}
		model.lists[id] = tracklist.NewModel(id, playlist)
		model.panels[id] = deck.NewModel(id)
	}
	model.setFocus(mixer.DeckA)
	model.refresh()

	return model
}

// Focus возвращает активную деку
func (m *MainModel) Focus() mixer.DeckID { return m.focus }

// Status возвращает последнее сообщение статусной строки
func (m *MainModel) Status() string { return m.status }

// Err возвращает последнюю ошибку жеста
func (m *MainModel) Err() error { return m.err }

// Init запускает опрос состояния и чтение событий
func (m *MainModel) Init() tea.Cmd {
	return tea.Batch(tick(), m.listenForEvents())
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		half := msg.Width / 2
		for _, id := range mixer.Decks {
			m.lists[id].SetSize(half-2, max(5, msg.Height-22))
			m.panels[id].SetWidth(half - 4)
		}
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()

	case eventMsg:
		m.refresh()
		return m, m.listenForEvents()

	case GestureDoneMsg:
		m.refresh()
		switch {
		case errors.Is(msg.Err, mixer.ErrNoNextTrack):
			m.err = nil
			m.status = "⏭️ Следующего трека нет"
		case msg.Err != nil:
			m.err = msg.Err
		default:
			m.err = nil
			m.status = "✅ " + msg.Name
		}
		return m, nil

	case tracklist.TrackSelectedMsg:
		if err := m.mixer.SelectTrack(msg.Deck, msg.Track); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("💿 Дека %s: выбран %s", msg.Deck, msg.Track.Name())
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *MainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.focus

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Switch):
		m.setFocus(id.Other())
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.PlayPause):
		return m, m.gesture("Пуск/пауза "+id.String(), func(ctx context.Context) error {
			return m.mixer.PlayPause(ctx, id)
		})

	case key.Matches(msg, m.keys.FadeIn):
		return m, m.gesture("Нарастание "+id.String(), func(ctx context.Context) error {
			return m.mixer.FadeIn(ctx, id)
		})

	case key.Matches(msg, m.keys.FadeOut):
		return m, m.gesture("Затухание "+id.String(), func(ctx context.Context) error {
			return m.mixer.FadeOut(ctx, id)
		})

	case key.Matches(msg, m.keys.Next):
		return m, m.gesture("Следующий трек "+id.String(), func(ctx context.Context) error {
			return m.mixer.FadeToNext(ctx, id)
		})

	case key.Matches(msg, m.keys.CrossAB):
		return m, m.gesture("Кроссфейд A → B", func(ctx context.Context) error {
			return m.mixer.Crossfade(ctx, mixer.DeckA, mixer.DeckB)
		})

	case key.Matches(msg, m.keys.CrossBA):
		return m, m.gesture("Кроссфейд B → A", func(ctx context.Context) error {
			return m.mixer.Crossfade(ctx, mixer.DeckB, mixer.DeckA)
		})

	case key.Matches(msg, m.keys.VolumeUp), key.Matches(msg, m.keys.VolumeDown):
		step := VolumeStep
		if key.Matches(msg, m.keys.VolumeDown) {
			step = -step
		}
		volume := m.panels[id].Snapshot().Volume + step
		m.apply(m.mixer.SetDeckVolume(id, max(0, min(mixer.MaxPosition, volume))))
		return m, nil

	case key.Matches(msg, m.keys.MasterUp), key.Matches(msg, m.keys.MasterDown):
		step := VolumeStep
		if key.Matches(msg, m.keys.MasterDown) {
			step = -step
		}
		volume := m.master.Volume + step
		m.apply(m.mixer.SetMasterVolume(max(0, min(mixer.MaxPosition, volume))))
		return m, nil

	case key.Matches(msg, m.keys.Mute):
		m.apply(m.mixer.SetDeckMute(id, !m.panels[id].Snapshot().Muted))
		return m, nil

	case key.Matches(msg, m.keys.MuteMaster):
		m.apply(m.mixer.SetMasterMute(!m.master.Muted))
		return m, nil

	case key.Matches(msg, m.keys.FadeLonger), key.Matches(msg, m.keys.FadeShorter):
		step := FadeStep
		if key.Matches(msg, m.keys.FadeShorter) {
			step = -step
		}
		d := max(0, min(MaxFade, m.fade+step))
		m.apply(m.mixer.SetFadeDuration(d))
		return m, nil
	}

	// Навигация по плейлисту активной деки
	var cmd tea.Cmd
	m.lists[id], cmd = m.lists[id].Update(msg)
	return m, cmd
}

// apply обновляет состояние после синхронной команды
func (m *MainModel) apply(err error) {
	m.err = err
	m.refresh()
}

// gesture запускает блокирующую операцию движка в отдельной команде
func (m *MainModel) gesture(name string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	m.status = "⏳ " + name
	return func() tea.Msg {
		return GestureDoneMsg{Name: name, Err: fn(ctx)}
	}
}

func (m *MainModel) setFocus(id mixer.DeckID) {
	m.focus = id
	for _, d := range mixer.Decks {
		m.lists[d].SetFocused(d == id)
		m.panels[d].SetFocused(d == id)
	}
}

// refresh перечитывает состояние дек и мастера
func (m *MainModel) refresh() {
	for _, id := range mixer.Decks {
		s, err := m.mixer.Snapshot(id)
		if err != nil {
			continue
		}
		m.panels[id].SetSnapshot(s)

		list := m.lists[id]
		if list.Len() != len(s.Playlist) {
			list.SetTracks(s.Playlist)
		}
		selected := ""
		if s.Selected != nil {
			selected = s.Selected.TrackID()
		}
		list.SetSelected(selected)
	}
	m.master = m.mixer.Master()
	m.fade = m.mixer.FadeDuration()
}

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// listenForEvents ждет следующее событие деки
func (m *MainModel) listenForEvents() tea.Cmd {
	events := m.mixer.Events()
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case ev := <-events:
			return eventMsg(ev)
		case <-ctx.Done():
			return nil
		}
	}
}

// View отображает интерфейс
func (m *MainModel) View() string {
	header := headerStyle.Render("🎛️ CueWave")

	lists := lipgloss.JoinHorizontal(lipgloss.Top,
		m.lists[mixer.DeckA].View(), "  ", m.lists[mixer.DeckB].View())
	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		m.panels[mixer.DeckA].View(), " ", m.panels[mixer.DeckB].View())

	masterText := fmt.Sprintf("🔊 Мастер: %3.0f (x%.2f)", m.master.Volume, m.master.Gain)
	if m.master.Muted {
		masterText += " " + errorStyle.Render("MUTE")
	}
	masterText += fmt.Sprintf("   ⏱️ Фейд: %s", utils.FormatSeconds(m.fade))

	var status string
	if m.err != nil {
		status = errorStyle.Render("❌ " + m.err.Error())
	} else if m.status != "" {
		status = infoStyle.Render(m.status)
	}

	sections := []string{
		header,
		panels,
		masterStyle.Render(masterText),
		status,
		lists,
		helpStyle.Render(m.help.View(m.keys)),
	}
	return strings.Join(sections, "\n")
}
