package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/ftahirops/biasdeck/engine"
	"github.com/ftahirops/biasdeck/host"
	"github.com/ftahirops/biasdeck/panel"
)

// headerLines is the title line plus the status line.
const headerLines = 2

type payloadMsg string

// saveConfirmMsg is sent after a save completes.
type saveConfirmMsg struct {
	path string
	err  error
}

// Options wires a Model to its node and producers.
type Options struct {
	Graph     *host.Graph
	Panel     *panel.Panel
	Payloads  <-chan string          // live analysis outputs, may be nil
	Player    *engine.OutputPlayer   // recorded outputs, may be nil
	Recorder  *engine.OutputRecorder // may be nil
	StatePath string
	TopN      int
	Logger    *zap.Logger
}

// Model is the bubbletea host for one debias node.
type Model struct {
	graph     *host.Graph
	panel     *panel.Panel
	node      *host.Node
	keys      keyMap
	payloads  <-chan string
	player    *engine.OutputPlayer
	recorder  *engine.OutputRecorder
	statePath string
	topN      int
	log       *zap.Logger

	width  int
	height int

	// Navigation
	selected int
	scroll   int
	showHelp bool

	// captured receives move/up events after a press until release.
	captured *host.Widget

	inspector viewport.Model

	// Save / status feedback
	saveMsg     string
	saveMsgTime time.Time
}

// NewModel creates the TUI model. When a player is given its first frame
// is delivered right away.
func NewModel(opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := Model{
		graph:     opts.Graph,
		panel:     opts.Panel,
		node:      opts.Panel.Node(),
		keys:      defaultKeys(),
		payloads:  opts.Payloads,
		player:    opts.Player,
		recorder:  opts.Recorder,
		statePath: opts.StatePath,
		topN:      opts.TopN,
		log:       log,
		inspector: viewport.New(80, 20),
	}
	if m.topN <= 0 {
		m.topN = 10
	}
	if m.player != nil {
		if f, ok := m.player.Next(); ok {
			m.node.Executed(f.Outputs)
		}
	}
	m.refreshInspector()
	return m
}

func (m Model) Init() tea.Cmd {
	return waitPayload(m.payloads)
}

// waitPayload blocks on the next live payload.
func waitPayload(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		raw, ok := <-ch
		if !ok {
			return nil
		}
		return payloadMsg(raw)
	}
}

// saveState writes the workflow to path.
func saveState(g *host.Graph, path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return saveConfirmMsg{err: fmt.Errorf("no state path configured")}
		}
		return saveConfirmMsg{path: path, err: g.SaveFile(path)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.inspector.Width = msg.Width
		m.inspector.Height = m.bodyHeight()
		m.refreshInspector()
		m.clampScroll()
		return m, nil

	case payloadMsg:
		m.deliver(string(msg))
		return m, waitPayload(m.payloads)

	case saveConfirmMsg:
		if msg.err != nil {
			m.saveMsg = "save failed: " + msg.err.Error()
			m.log.Warn("state save failed", zap.Error(msg.err))
		} else {
			m.saveMsg = "saved " + msg.path
		}
		m.saveMsgTime = time.Now()
		return m, nil

	case tea.MouseMsg:
		if m.panel.Instance().ReadOnly {
			var cmd tea.Cmd
			m.inspector, cmd = m.inspector.Update(msg)
			return m, cmd
		}
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return *m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return *m, nil
	case key.Matches(msg, m.keys.Save):
		return *m, saveState(m.graph, m.statePath)
	case key.Matches(msg, m.keys.NextOutput):
		if m.player != nil {
			if f, ok := m.player.Next(); ok {
				m.node.Executed(f.Outputs)
				m.refreshInspector()
			}
		}
		return *m, nil
	case key.Matches(msg, m.keys.PrevOutput):
		// Index is one past the frame on screen.
		if m.player != nil && m.player.Index() > 1 {
			if f, ok := m.player.Seek(m.player.Index() - 2); ok {
				m.node.Executed(f.Outputs)
				m.refreshInspector()
			}
		}
		return *m, nil
	case key.Matches(msg, m.keys.PrevPreset):
		m.cyclePreset(-1)
		return *m, nil
	case key.Matches(msg, m.keys.NextPreset):
		m.cyclePreset(1)
		return *m, nil
	}

	if m.panel.Instance().ReadOnly {
		var cmd tea.Cmd
		m.inspector, cmd = m.inspector.Update(msg)
		return *m, cmd
	}

	rows := m.rows()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(rows)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.PageUp):
		m.selected -= m.bodyHeight()
		if m.selected < 0 {
			m.selected = 0
		}
	case key.Matches(msg, m.keys.PageDown):
		m.selected += m.bodyHeight()
		if m.selected > len(rows)-1 {
			m.selected = len(rows) - 1
		}
	case key.Matches(msg, m.keys.Toggle):
		if w := m.selectedWidget(); w != nil {
			w.DefaultPointer(host.PointerEvent{Kind: host.PointerDown})
		}
	case key.Matches(msg, m.keys.Dec):
		m.nudge(-1)
	case key.Matches(msg, m.keys.Inc):
		m.nudge(1)
	case key.Matches(msg, m.keys.DecFast):
		m.nudge(-5)
	case key.Matches(msg, m.keys.IncFast):
		m.nudge(5)
	case key.Matches(msg, m.keys.Neutral):
		if c := m.selectedComposite(); c != nil && c.Binding().HasStrength() {
			c.Binding().SetValue(1.0)
			m.node.SetDirty()
		}
	}
	m.clampScroll()
	return *m, nil
}

// handleMouse routes terminal mouse events to rows. A press selects the
// row under the pointer and captures it; motion and release go to the
// captured row only.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	x := float64(msg.X)
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scroll -= 3
			m.clampScroll()
			return
		case tea.MouseButtonWheelDown:
			m.scroll += 3
			m.clampScroll()
			return
		case tea.MouseButtonLeft:
		default:
			return
		}
		idx := msg.Y - headerLines + m.scroll
		rows := m.rows()
		if msg.Y < headerLines || idx < 0 || idx >= len(rows) {
			return
		}
		m.selected = idx
		m.captured = rows[idx]
		m.dispatch(m.captured, host.PointerDown, x)
	case tea.MouseActionMotion:
		if m.captured != nil {
			m.dispatch(m.captured, host.PointerMove, x)
		}
	case tea.MouseActionRelease:
		if m.captured != nil {
			m.dispatch(m.captured, host.PointerUp, x)
			m.captured = nil
		}
	}
}

func (m *Model) dispatch(w *host.Widget, kind host.PointerKind, x float64) bool {
	ev := host.PointerEvent{Kind: kind, X: x, Y: 0.5}
	if w.Drawer != nil {
		return w.Drawer.Pointer(ev, m.rowWidth())
	}
	return w.DefaultPointer(ev)
}

// deliver hands a live payload to the node the way a finished execution
// would, recording it first when a recorder is attached.
func (m *Model) deliver(raw string) {
	outputs := map[string]any{panel.OutputField: []any{raw}}
	if m.recorder != nil {
		if err := m.recorder.Record(m.node.ID, outputs); err != nil {
			m.log.Warn("output record failed", zap.Error(err))
		}
	}
	m.node.Executed(outputs)
	m.refreshInspector()
}

func (m *Model) cyclePreset(delta int) {
	if w := m.node.Widget(panel.PresetWidget); w != nil {
		w.Cycle(delta)
	}
}

func (m *Model) nudge(steps int) {
	if c := m.selectedComposite(); c != nil {
		c.Nudge(steps)
		return
	}
	if w := m.selectedWidget(); w != nil && w.Kind == host.KindCombo {
		w.Cycle(steps)
	}
}

func (m *Model) refreshInspector() {
	if !m.panel.Instance().ReadOnly {
		return
	}
	s := engine.Summarize(m.panel.Overlay().Payload(), m.panel.Instance().Taxonomy, m.topN)
	w := m.width
	if w == 0 {
		w = 80
	}
	m.inspector.SetContent(RenderSummary(s, w))
}

// rows returns the widgets that occupy at least one row, in order.
func (m Model) rows() []*host.Widget {
	var out []*host.Widget
	for _, w := range m.node.Widgets() {
		if w.Rows() > 0 {
			out = append(out, w)
		}
	}
	return out
}

func (m Model) selectedWidget() *host.Widget {
	rows := m.rows()
	if m.selected < 0 || m.selected >= len(rows) {
		return nil
	}
	return rows[m.selected]
}

func (m Model) selectedComposite() *Composite {
	if w := m.selectedWidget(); w != nil {
		if c, ok := w.Drawer.(*Composite); ok {
			return c
		}
	}
	return nil
}

func (m Model) bodyHeight() int {
	h := m.height - headerLines - 1
	if h < 1 {
		h = 1
	}
	return h
}

// clampScroll keeps the selection visible and the offset in range.
func (m *Model) clampScroll() {
	n := len(m.rows())
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	h := m.bodyHeight()
	if m.selected < m.scroll {
		m.scroll = m.selected
	}
	if m.selected >= m.scroll+h {
		m.scroll = m.selected - h + 1
	}
	if m.scroll > n-h {
		m.scroll = n - h
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var sb strings.Builder
	sb.WriteString(m.renderTitle() + "\n")
	sb.WriteString(m.renderStatusBar() + "\n")

	if m.panel.Instance().ReadOnly {
		sb.WriteString(m.inspector.View() + "\n")
		sb.WriteString(m.renderHelpLine())
		return sb.String()
	}

	rows := m.rows()
	end := m.scroll + m.bodyHeight()
	if end > len(rows) {
		end = len(rows)
	}
	for i := m.scroll; i < end; i++ {
		sb.WriteString(m.renderRow(rows[i], i == m.selected) + "\n")
	}
	for i := end - m.scroll; i < m.bodyHeight(); i++ {
		sb.WriteString("\n")
	}
	sb.WriteString(m.renderHelpLine())
	return sb.String()
}

// rowWidth is the width rows are laid out at: the terminal width, but
// never less than the node's minimum. Wider rows are clipped on screen.
func (m Model) rowWidth() int {
	return max(m.width, int(m.node.Size.W))
}

func (m Model) renderRow(w *host.Widget, selected bool) string {
	line := renderWidget(w, m.rowWidth(), selected)
	if m.rowWidth() > m.width {
		line = lipgloss.NewStyle().MaxWidth(m.width).Render(line)
	}
	return line
}

// renderWidget draws one row: the installed face when there is one, else
// a plain rendition of the raw control.
func renderWidget(w *host.Widget, width int, selected bool) string {
	if c, ok := w.Drawer.(*Composite); ok {
		c.Selected = selected
		return c.Render(width)
	}
	if w.Drawer != nil {
		return w.Drawer.Render(width)
	}
	marker := " "
	if selected {
		marker = "▸"
	}
	var line string
	switch w.Kind {
	case host.KindCombo:
		line = fmt.Sprintf("%s %s ◂ %s ▸", marker, labelStyle.Render("Preset"), valueStyle.Render(w.String()))
	case host.KindToggle:
		box := "[ ]"
		if w.Bool() {
			box = "[x]"
		}
		line = fmt.Sprintf("%s %s %s", marker, box, w.Name)
	default:
		v, _ := w.Float()
		line = fmt.Sprintf("%s %s %.2f", marker, labelStyle.Render(w.Name), v)
	}
	if selected {
		return selectedStyle.Render(fitWidth(line, width))
	}
	return line
}

// RenderNode draws every visible row of n, one per line, at width or the
// node's minimum width, whichever is larger.
func RenderNode(n *host.Node, width int) string {
	width = max(width, int(n.Size.W))
	var lines []string
	for _, w := range n.Widgets() {
		if w.Rows() > 0 {
			lines = append(lines, renderWidget(w, width, false))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTitle() string {
	inst := m.panel.Instance()
	title := inst.Title
	if inst.Variant != "" {
		title += " (" + inst.Variant + ")"
	}
	return titleStyle.Render("biasdeck") + dimStyle.Render(" · ") + valueStyle.Render(title)
}

func (m Model) renderStatusBar() string {
	var parts []string
	if w := m.node.Widget(panel.PresetWidget); w != nil {
		parts = append(parts, labelStyle.Render("preset ")+orangeStyle.Render(w.String()))
	}
	enabled := 0
	for _, b := range m.panel.Bindings().All() {
		if b.Enabled() {
			enabled++
		}
	}
	if n := m.panel.Bindings().Len(); n > 0 {
		parts = append(parts, labelStyle.Render("enabled ")+valueStyle.Render(fmt.Sprintf("%d/%d", enabled, n)))
	}
	if gen := m.panel.Overlay().Generation(); gen > 0 {
		parts = append(parts, labelStyle.Render("analysis ")+okStyle.Render(fmt.Sprintf("#%d", gen)))
	} else {
		parts = append(parts, dimStyle.Render("no analysis"))
	}
	if m.player != nil {
		parts = append(parts, labelStyle.Render("replay ")+valueStyle.Render(fmt.Sprintf("%d/%d", m.player.Index(), m.player.Len())))
	}
	if m.saveMsg != "" && time.Since(m.saveMsgTime) < 5*time.Second {
		style := okStyle
		if strings.HasPrefix(m.saveMsg, "save failed") {
			style = critStyle
		}
		parts = append(parts, style.Render(m.saveMsg))
	}
	return " " + strings.Join(parts, dimStyle.Render(" │ "))
}

func (m Model) renderHelpLine() string {
	var parts []string
	for _, b := range m.keys.helpLine() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	line := helpStyle.Render(" " + strings.Join(parts, " · "))
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m Model) renderHelp() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("biasdeck: per-block strength control"))
	sb.WriteString("\n\n")
	sb.WriteString(headerStyle.Render("Keys"))
	sb.WriteString("\n")
	for _, b := range m.keys.all() {
		h := b.Help()
		sb.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
	}
	sb.WriteString("\n")
	sb.WriteString(headerStyle.Render("Mouse"))
	sb.WriteString("\n")
	sb.WriteString("  click box   toggle block\n")
	sb.WriteString("  drag track  set strength (-2..2, snapped)\n")
	sb.WriteString("  wheel       scroll\n")
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Press any key to close"))
	return sb.String()
}
