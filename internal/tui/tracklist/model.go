// Package tracklist содержит список треков одной деки для TUI
package tracklist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/4lbertR/CueWave/internal/mixer"
	"github.com/4lbertR/CueWave/internal/utils"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	dimItemStyle      = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("#888888"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
)

// nameWidth - ширина колонки с названием трека
const nameWidth = 32

// TrackSelectedMsg отправляется при выборе трека на деке
type TrackSelectedMsg struct {
	Deck  mixer.DeckID
	Track mixer.Track
}

// trackItem реализует интерфейс list.Item для трека
type trackItem struct {
	track mixer.Track
}

func (i trackItem) FilterValue() string {
	return i.track.Name()
}

// trackItemDelegate отображает строку трека и отмечает выбранный на деке трек
type trackItemDelegate struct {
	focused  *bool
	selected *string
}

func (d trackItemDelegate) Height() int                             { return 1 }
func (d trackItemDelegate) Spacing() int                            { return 0 }
func (d trackItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d trackItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(trackItem)
	if !ok {
		return
	}

	marker := " "
	if i.track.TrackID() == *d.selected {
		marker = "♪"
	}

	str := fmt.Sprintf("%s %-*s %s",
		marker,
		nameWidth,
		utils.TruncateString(i.track.Name(), nameWidth),
		utils.FormatDuration(i.track.Duration()))

	fn := itemStyle.Render
	if index == m.Index() {
		style := selectedItemStyle
		if !*d.focused {
			style = dimItemStyle
		}
		fn = func(s ...string) string {
			return style.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// Model представляет плейлист деки
type Model struct {
	deck     mixer.DeckID
	list     list.Model
	focused  bool
	selected string
}

// NewModel создает список для деки с заданным плейлистом
func NewModel(deck mixer.DeckID, tracks []mixer.Track) *Model {
	m := &Model{deck: deck}

	l := list.New(toItems(tracks), trackItemDelegate{focused: &m.focused, selected: &m.selected}, 0, 0)
	l.Title = fmt.Sprintf("Дека %s", deck)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	// Клавиши выхода обрабатывает главная модель
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.SetSize(nameWidth+16, 10)

	m.list = l
	return m
}

func toItems(tracks []mixer.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}
	return items
}

// Deck возвращает деку списка
func (m *Model) Deck() mixer.DeckID { return m.deck }

// SetFocused отмечает список активным
func (m *Model) SetFocused(focused bool) { m.focused = focused }

// Focused сообщает, активен ли список
func (m *Model) Focused() bool { return m.focused }

// SetSize задает размеры списка
func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// SetTracks заменяет плейлист, сохраняя позицию курсора если возможно
func (m *Model) SetTracks(tracks []mixer.Track) {
	index := m.list.Index()
	m.list.SetItems(toItems(tracks))
	if index < len(tracks) {
		m.list.Select(index)
	}
}

// Len возвращает число треков в списке
func (m *Model) Len() int { return len(m.list.Items()) }

// SetSelected отмечает трек, выбранный на деке
func (m *Model) SetSelected(trackID string) { m.selected = trackID }

// Current возвращает трек под курсором
func (m *Model) Current() (mixer.Track, bool) {
	item, ok := m.list.SelectedItem().(trackItem)
	if !ok {
		return nil, false
	}
	return item.track, true
}

// Update обрабатывает навигацию и выбор трека
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		track, ok := m.Current()
		if !ok {
			return m, nil
		}
		deck := m.deck
		return m, func() tea.Msg {
			return TrackSelectedMsg{Deck: deck, Track: track}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает список
func (m *Model) View() string {
	if m.Len() == 0 {
		return titleStyle.Render(fmt.Sprintf("Дека %s", m.deck)) + "\n\n" +
			itemStyle.Render("Плейлист пуст")
	}
	return m.list.View()
}
