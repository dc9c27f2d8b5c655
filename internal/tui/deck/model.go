// Package deck содержит панель состояния деки для TUI
package deck

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/4lbertR/CueWave/internal/mixer"
	"github.com/4lbertR/CueWave/internal/utils"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0000ff"))

	focusedTitleStyle = titleStyle.
				Foreground(lipgloss.Color("170"))

	trackInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	statusStyle = lipgloss.NewStyle().
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#666666")).
			Padding(0, 1)

	focusedPanelStyle = panelStyle.
				BorderForeground(lipgloss.Color("170"))
)

// meterWidth - ширина индикаторов по умолчанию
const meterWidth = 30

// Model представляет панель деки: трек, позицию, громкость и усиления
type Model struct {
	id       mixer.DeckID
	snapshot mixer.DeckSnapshot
	focused  bool

	position progress.Model
	volume   progress.Model
	fade     progress.Model
	output   progress.Model
}

// NewModel создает панель для деки
func NewModel(id mixer.DeckID) *Model {
	return &Model{
		id:       id,
		position: newMeter(progress.WithDefaultGradient()),
		volume:   newMeter(progress.WithSolidFill("#5A56E0")),
		fade:     newMeter(progress.WithSolidFill("#EE6FF8")),
		output:   newMeter(progress.WithGradient("#00AA00", "#FF0000")),
	}
}

func newMeter(opt progress.Option) progress.Model {
	m := progress.New(opt, progress.WithoutPercentage())
	m.Width = meterWidth
	return m
}

// ID возвращает деку панели
func (m *Model) ID() mixer.DeckID { return m.id }

// SetSnapshot обновляет отображаемое состояние
func (m *Model) SetSnapshot(s mixer.DeckSnapshot) { m.snapshot = s }

// Snapshot возвращает последнее отображенное состояние
func (m *Model) Snapshot() mixer.DeckSnapshot { return m.snapshot }

// SetFocused отмечает панель активной
func (m *Model) SetFocused(focused bool) { m.focused = focused }

// SetWidth задает ширину индикаторов
func (m *Model) SetWidth(width int) {
	w := max(10, min(meterWidth, width-16))
	m.position.Width = w
	m.volume.Width = w
	m.fade.Width = w
	m.output.Width = w
}

// View отображает панель
func (m *Model) View() string {
	s := m.snapshot

	title := titleStyle.Render(fmt.Sprintf("🎚️ Дека %s", m.id))
	if m.focused {
		title = focusedTitleStyle.Render(fmt.Sprintf("🎚️ Дека %s", m.id))
	}

	trackInfo := trackInfoStyle.Render("💿 " + trackName(s))

	statusText := statusStyle.Render(formatStatus(s))
	if s.Muted {
		statusText += " " + mutedStyle.Render("MUTE")
	}

	var percent float64
	if s.Length > 0 {
		percent = float64(s.Position) / float64(s.Length)
	}
	timeText := fmt.Sprintf("%s / %s",
		utils.FormatDuration(s.Position),
		utils.FormatDuration(s.Length))

	lines := []string{
		title,
		trackInfo,
		statusText,
		m.position.ViewAs(clamp(percent)) + " " + timeText,
		"",
		row("Громк.", m.volume.ViewAs(s.Volume/mixer.MaxPosition), fmt.Sprintf("%3.0f", s.Volume)),
		row("Фейд", m.fade.ViewAs(clamp(s.FadeGain)), fmt.Sprintf("%.2f", s.FadeGain)),
		row("Выход", m.output.ViewAs(clamp(s.EffectiveGain/mixer.MaxGain)), fmt.Sprintf("x%.2f", s.EffectiveGain)),
	}

	style := panelStyle
	if m.focused {
		style = focusedPanelStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

func row(label, meter, value string) string {
	return fmt.Sprintf("%-7s %s %s", label, meter, value)
}

func trackName(s mixer.DeckSnapshot) string {
	switch {
	case s.Loaded != nil:
		return utils.TruncateString(s.Loaded.Name(), 40)
	case s.Selected != nil:
		return utils.TruncateString(s.Selected.Name(), 40) + " (не загружен)"
	default:
		return "нет трека"
	}
}

func formatStatus(s mixer.DeckSnapshot) string {
	switch {
	case s.Fade != nil && s.Fade.Target > s.Fade.Start:
		return "🔼 Нарастание"
	case s.Fade != nil:
		return "🔽 Затухание"
	case s.Playing:
		return "▶️ Воспроизведение"
	default:
		return "⏸️ Пауза"
	}
}

func clamp(v float64) float64 {
	return max(0, min(1, v))
}
