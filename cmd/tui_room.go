package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"dataroom-cli/cmd/api"
	"dataroom-cli/cmd/config"
	"dataroom-cli/cmd/render"
	"dataroom-cli/cmd/session"
	"dataroom-cli/cmd/utils"
	uitk "dataroom-cli/internal/tui"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	gap            = "\n\n"
	clearConfirmID = "clear"
	renderCacheLen = 256
)

var (
	userPrompt      = "🧑 You:"
	assistantPrompt = "📊 Data Room:"
	thinkingText    = "Multi-agent system thinking..."

	clearPrompt = "Clear session? This removes the uploaded file and chat history."

	roomHelp = `Commands:
  /upload PATH  - Upload a new CSV or Excel file (replaces the current one)
  /info         - Show columns and a preview of the dataset
  /open [N]     - Open chart N (default: the latest) in the browser
  /copy         - Copy the latest result table to the clipboard
  /clear        - Clear the session
  /help         - Show this help
  /exit         - Exit

Hotkeys:
  Ctrl+P  - Expand/collapse execution plans
  Ctrl+L  - Clear the session
  Up/Down - Input history
  PgUp/PgDn - Scroll`
)

// roomBackend is what the interactive view needs from the API client.
type roomBackend interface {
	session.Backend
	Health(ctx context.Context) (*api.HealthResponse, error)
}

type healthMsg struct {
	resp *api.HealthResponse
	err  error
}

type chartOpenedMsg struct {
	n    int
	path string
	err  error
}

type copiedMsg struct {
	rows int
	err  error
}

// note is a client-side line (help, dataset info) shown after the transcript
// record at index after.
type note struct {
	after int
	text  string
}

type roomModel struct {
	sess     *session.Session
	backend  roomBackend
	settings *config.Settings

	width  int
	height int

	textarea textarea.Model
	viewport viewport.Model
	spin     spinner.Model
	picker   filepicker.Model
	toast    uitk.ToastModel
	confirm  uitk.ConfirmModel

	health    *api.HealthResponse
	healthErr error

	history   []string
	histIndex int
	showPlans bool

	notes    []note
	notesGen uint64

	// Rendered transcript blocks keyed by generation, index, width and plan
	// mode. Records never change after append so entries never go stale.
	cache *lru.Cache[string, string]

	mdStyle     string
	initialFile string
	chartsDir   string
	openURL     func(string) tea.Cmd
}

// runRoomTUI starts the interactive data room.
func runRoomTUI(backend roomBackend, initialFile string) error {
	m := newRoomModel(backend, settings, initialFile)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	SetTUIMode(p)
	defer ClearTUIMode()

	_, err := p.Run()
	return err
}

func newRoomModel(backend roomBackend, s *config.Settings, initialFile string) roomModel {
	ta := textarea.New()
	ta.Placeholder = "Ask a question about your data..."
	ta.Prompt = "> "
	ta.Focus()
	ta.SetWidth(30)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(30, 5)
	// typing must never scroll, so only the page keys and the mouse do
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	fp := filepicker.New()
	fp.AllowedTypes = session.AllowedExtensions()
	fp.CurrentDirectory = utils.GetEffectiveCWD()
	fp.Height = 10

	cache, _ := lru.New[string, string](renderCacheLen)

	mdStyle := "light"
	if lipgloss.HasDarkBackground() {
		mdStyle = "dark"
	}
	if !s.Emoji {
		mdStyle = "notty"
	}

	width, height, _ := term.GetSize(os.Stdout.Fd())

	m := roomModel{
		sess:        session.New(backend),
		backend:     backend,
		settings:    s,
		textarea:    ta,
		viewport:    vp,
		spin:        sp,
		picker:      fp,
		toast:       uitk.NewToastModel(),
		confirm:     uitk.NewConfirmModel(),
		showPlans:   s.ShowPlans,
		cache:       cache,
		mdStyle:     mdStyle,
		initialFile: initialFile,
		chartsDir:   s.ChartsDir,
		openURL:     openURL,
	}
	if width > 0 && height > 0 {
		m.resize(width, height)
	}
	return m
}

func (m roomModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.picker.Init(), m.spin.Tick, m.sess.Resume(), checkHealthCmd(m.backend), textarea.Blink}
	if m.initialFile != "" {
		cmd, err := m.sess.Upload(utils.ResolvePath(m.initialFile))
		if err != nil {
			cmds = append(cmds, uitk.ShowToast(uploadErrorText(err), uitk.ToastError))
		} else {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func checkHealthCmd(backend roomBackend) tea.Cmd {
	return func() tea.Msg {
		resp, err := backend.Health(context.Background())
		return healthMsg{resp: resp, err: err}
	}
}

func (m roomModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.toast, cmd = m.toast.Update(msg)
	cmds = append(cmds, cmd)

	if notice := m.sess.Handle(msg); !notice.IsZero() {
		cmds = append(cmds, noticeToast(notice))
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.confirm, _ = m.confirm.Update(msg)

	case session.UploadDoneMsg, session.ClearDoneMsg, session.ChatDoneMsg:
		m.syncHistory(false)
		m.refreshViewportBottom()
		if m.sess.State() == session.NoDataset {
			cmds = append(cmds, m.picker.Init())
		}

	case session.ResumeMsg:
		m.syncHistory(true)
		m.refreshViewportBottom()

	case healthMsg:
		m.health, m.healthErr = msg.resp, msg.err
		if msg.err != nil {
			utils.LogDebug(fmt.Sprintf("health check failed: %v", msg.err))
		}

	case TUIMessageMsg:
		kind := uitk.ToastInfo
		switch msg.Message.Type {
		case ErrorMessage, WarningMessage:
			kind = uitk.ToastError
		case SuccessMessage:
			kind = uitk.ToastSuccess
		}
		cmds = append(cmds, uitk.ShowToast(msg.Message.Content, kind))

	case uitk.ConfirmResultMsg:
		if msg.ID == clearConfirmID {
			cmds = append(cmds, m.sess.Confirm(msg.Yes))
		}

	case chartOpenedMsg:
		if msg.err != nil {
			cmds = append(cmds, uitk.ShowToast(msg.err.Error(), uitk.ToastError))
		} else {
			cmds = append(cmds, uitk.ShowToast(fmt.Sprintf("Opened chart %d: %s", msg.n, msg.path), uitk.ToastSuccess))
		}

	case copiedMsg:
		if msg.err != nil {
			cmds = append(cmds, uitk.ShowToast("Copy failed: "+msg.err.Error(), uitk.ToastError))
		} else {
			cmds = append(cmds, uitk.ShowToast(fmt.Sprintf("Copied %d rows to the clipboard", msg.rows), uitk.ToastSuccess))
		}

	case spinner.TickMsg:
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		if m.sess.Snapshot().ChatInFlight {
			m.setViewportContent()
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		var handled bool
		m, cmd, handled = m.handleKey(msg)
		cmds = append(cmds, cmd)
		if handled {
			return m, tea.Batch(cmds...)
		}
	}

	if m.sess.State() == session.NoDataset {
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
		if ok, path := m.picker.DidSelectFile(msg); ok {
			cmds = append(cmds, m.startUpload(path))
		}
		if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
			cmds = append(cmds, uitk.ShowToast(fmt.Sprintf("%s: %s", filepath.Base(path), session.MsgUnsupportedType), uitk.ToastError))
		}
	}
	return m, tea.Batch(cmds...)
}

// handleKey reports handled=true when the key must not reach the file picker.
func (m roomModel) handleKey(msg tea.KeyMsg) (roomModel, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit, true
	}
	if m.confirm.Active() {
		var cmd tea.Cmd
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd, true
	}
	if m.sess.State() == session.NoDataset {
		if m.sess.Snapshot().UploadInFlight {
			return m, nil, true
		}
		if msg.String() == "q" || msg.String() == "ctrl+d" {
			return m, tea.Quit, true
		}
		return m, nil, false
	}

	switch msg.String() {
	case "ctrl+d":
		return m, tea.Quit, true

	case "ctrl+p":
		m.showPlans = !m.showPlans
		m.refreshViewport()
		return m, nil, true

	case "ctrl+l":
		return m.askClear(), nil, true

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd, true

	case "up":
		if m.histIndex > 0 {
			m.histIndex--
			m.textarea.SetValue(m.history[m.histIndex])
			m.textarea.CursorEnd()
		}
		return m, nil, true

	case "down":
		if m.histIndex < len(m.history)-1 {
			m.histIndex++
			m.textarea.SetValue(m.history[m.histIndex])
			m.textarea.CursorEnd()
		} else {
			m.histIndex = len(m.history)
			m.textarea.SetValue("")
		}
		return m, nil, true

	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd, true
}

func (m roomModel) submit() (roomModel, tea.Cmd, bool) {
	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return m, nil, true
	}
	if strings.HasPrefix(input, "/") {
		m.textarea.SetValue("")
		var cmd tea.Cmd
		m, cmd = m.runSlash(input)
		return m, cmd, true
	}

	if err := m.sess.CanSend(); err != nil {
		// keep the text so it can be sent once the current answer arrives
		return m, uitk.ShowToast(capitalize(err.Error()), uitk.ToastError), true
	}
	cmd := m.sess.SendUserMessage(input)
	m.pushHistory(input)
	m.textarea.SetValue("")
	m.refreshViewportBottom()
	return m, tea.Batch(cmd, m.spin.Tick), true
}

// parseSlash splits "/cmd rest of line" into a lower-cased command and the
// argument text with its case kept.
func parseSlash(input string) (string, string) {
	input = strings.TrimSpace(input)
	name, arg, _ := strings.Cut(input, " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

func (m roomModel) runSlash(input string) (roomModel, tea.Cmd) {
	name, arg := parseSlash(input)
	switch name {
	case "/help":
		m.addNote(dimText(roomHelp))
	case "/info":
		snap := m.sess.Snapshot()
		m.addNote(render.DataInfo(snap.Dataset, m.contentWidth()))
	case "/upload":
		if arg == "" {
			return m, uitk.ShowToast("Usage: /upload PATH", uitk.ToastError)
		}
		return m, m.startUpload(utils.ResolvePath(unquote(arg)))
	case "/open":
		return m, m.openChart(arg)
	case "/copy":
		return m, m.copyResult()
	case "/clear":
		return m.askClear(), nil
	case "/exit", "/quit":
		return m, tea.Quit
	default:
		return m, uitk.ShowToast(fmt.Sprintf("Unknown command %s, try /help", name), uitk.ToastError)
	}
	m.refreshViewportBottom()
	return m, nil
}

func (m roomModel) askClear() roomModel {
	if m.sess.RequestClear() {
		m.confirm = m.confirm.Ask(clearConfirmID, clearPrompt)
	}
	return m
}

func (m *roomModel) startUpload(path string) tea.Cmd {
	cmd, err := m.sess.Upload(path)
	if err != nil {
		return uitk.ShowToast(uploadErrorText(err), uitk.ToastError)
	}
	return tea.Batch(cmd, m.spin.Tick, uitk.ShowToast("Uploading "+filepath.Base(path)+"...", uitk.ToastInfo))
}

func uploadErrorText(err error) string {
	var verr *session.ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return capitalize(err.Error())
}

// charts lists the visualizations in transcript order, numbered from 1.
func charts(msgs []session.Message) []string {
	var out []string
	for _, msg := range msgs {
		if msg.Metadata != nil && msg.Metadata.HasVisualization {
			out = append(out, msg.Metadata.Visualization)
		}
	}
	return out
}

// chartIndex resolves the /open argument against n charts. An empty
// argument picks the latest one.
func chartIndex(arg string, n int) (int, error) {
	if n == 0 {
		return 0, errors.New("no charts yet, ask for a visualization first")
	}
	if arg == "" {
		return n, nil
	}
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("chart number must be between 1 and %d", n)
	}
	return i, nil
}

func (m roomModel) openChart(arg string) tea.Cmd {
	figures := charts(m.sess.Snapshot().Messages)
	n, err := chartIndex(arg, len(figures))
	if err != nil {
		return uitk.ShowToast(capitalize(err.Error()), uitk.ToastError)
	}
	dir, err := resolveChartsDir(m.chartsDir)
	if err != nil {
		return uitk.ShowToast(err.Error(), uitk.ToastError)
	}
	figJSON := figures[n-1]
	path := filepath.Join(dir, fmt.Sprintf("chart-%s-%d.html", time.Now().Format("20060102-150405"), n))
	open := m.openURL
	return func() tea.Msg {
		if err := render.WriteChartHTML(figJSON, path); err != nil {
			return chartOpenedMsg{n: n, err: err}
		}
		if open != nil {
			if msg := open("file://" + path)(); msg != nil {
				if e, ok := msg.(errorMsg); ok {
					return chartOpenedMsg{n: n, path: path, err: e.err}
				}
			}
		}
		return chartOpenedMsg{n: n, path: path}
	}
}

// latestResult is the most recent assistant result, or nil.
func latestResult(msgs []session.Message) *api.Result {
	for i := len(msgs) - 1; i >= 0; i-- {
		if md := msgs[i].Metadata; md != nil && md.Result != nil {
			return md.Result
		}
	}
	return nil
}

func (m roomModel) copyResult() tea.Cmd {
	res := latestResult(m.sess.Snapshot().Messages)
	if res == nil {
		return uitk.ShowToast("No result to copy yet", uitk.ToastError)
	}
	tsv := render.ResultTSV(res)
	rows := 1
	if res.Kind == api.ResultTable {
		rows = len(res.Rows)
	} else if res.Kind == api.ResultKeyValue {
		rows = len(res.Pairs)
	}
	return func() tea.Msg {
		return copiedMsg{rows: rows, err: clipboard.WriteAll(tsv)}
	}
}

func (m *roomModel) addNote(text string) {
	snap := m.sess.Snapshot()
	if snap.Generation != m.notesGen {
		m.notes, m.notesGen = nil, snap.Generation
	}
	m.notes = append(m.notes, note{after: len(snap.Messages), text: text})
}

func (m *roomModel) pushHistory(input string) {
	if n := len(m.history); n == 0 || m.history[n-1] != input {
		m.history = append(m.history, input)
	}
	m.histIndex = len(m.history)
}

// syncHistory rebuilds the input history after a reset. A resumed session
// seeds it with the user's earlier questions.
func (m *roomModel) syncHistory(resumed bool) {
	snap := m.sess.Snapshot()
	if snap.Generation == m.notesGen && !resumed {
		return
	}
	m.notes, m.notesGen = nil, snap.Generation
	if resumed {
		m.history = m.history[:0]
		for _, msg := range snap.Messages {
			if msg.Role == session.RoleUser {
				m.history = append(m.history, msg.Content)
			}
		}
	}
	m.histIndex = len(m.history)
}

func (m *roomModel) resize(width, height int) {
	m.width, m.height = width, height

	newWidth := width - 2
	if newWidth < 10 {
		newWidth = 10
	}
	m.textarea.SetWidth(newWidth)

	vpHeight := height - lipgloss.Height(m.renderInput()) - lipgloss.Height(m.renderInfoBar())
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight

	pickerHeight := height - 8
	if pickerHeight < 3 {
		pickerHeight = 3
	}
	m.picker.Height = pickerHeight
	m.refreshViewportBottom()
}

func (m roomModel) contentWidth() int {
	if m.width <= 4 {
		return 76
	}
	return m.width - 4
}

func (m *roomModel) setViewportContent() {
	m.viewport.SetContent(m.renderConversation())
}

func (m *roomModel) refreshViewport() {
	offset := m.viewport.YOffset
	m.setViewportContent()
	m.viewport.SetYOffset(offset)
}

func (m *roomModel) refreshViewportBottom() {
	m.setViewportContent()
	m.viewport.GotoBottom()
}

func (m roomModel) renderConversation() string {
	snap := m.sess.Snapshot()
	width := m.contentWidth()
	var b strings.Builder

	notes := m.notes
	if m.notesGen != snap.Generation {
		notes = nil
	}

	if len(snap.Messages) == 0 && !snap.ChatInFlight {
		b.WriteString(m.renderWelcome(snap))
		b.WriteString(gap)
	}

	ni, chartN := 0, 0
	for i, msg := range snap.Messages {
		for ni < len(notes) && notes[ni].after <= i {
			b.WriteString(notes[ni].text + gap)
			ni++
		}
		if msg.Metadata != nil && msg.Metadata.HasVisualization {
			chartN++
		}
		b.WriteString(m.renderMessage(snap.Generation, i, msg, chartN, width))
		b.WriteString(gap)
	}
	for ; ni < len(notes); ni++ {
		b.WriteString(notes[ni].text + gap)
	}

	if snap.ChatInFlight {
		b.WriteString(render.Plan(nil, true, width))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render(m.spin.View() + thinkingText))
		b.WriteString(gap)
	}
	return b.String()
}

func (m roomModel) renderWelcome(snap session.Snapshot) string {
	var b strings.Builder
	if snap.Dataset != nil {
		b.WriteString(render.DataInfo(snap.Dataset, m.contentWidth()))
		b.WriteString(gap)
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Try asking:"))
	for _, p := range m.settings.SamplePrompts {
		b.WriteString("\n  • " + p)
	}
	b.WriteString("\n\n" + dimText("Type /help for commands."))
	return b.String()
}

func (m roomModel) renderMessage(gen uint64, i int, msg session.Message, chartN, width int) string {
	key := fmt.Sprintf("%d/%d/%d/%t", gen, i, width, m.showPlans)
	if out, ok := m.cache.Get(key); ok {
		return out
	}
	out := renderMessageBlock(msg, chartN, width, m.showPlans, m.mdStyle)
	m.cache.Add(key, out)
	return out
}

func renderMessageBlock(msg session.Message, chartN, width int, showPlans bool, mdStyle string) string {
	if msg.Role == session.RoleUser {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("#cccccc"))
		return style.Bold(true).Render(userPrompt) + " " + style.Render(msg.Content)
	}

	label := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render(assistantPrompt)
	md := msg.Metadata
	if md == nil {
		md = &session.Metadata{}
	}

	parts := []string{}
	if md.Error {
		parts = append(parts, label+" "+lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(msg.Content))
	} else {
		parts = append(parts, label, render.MarkdownStyled(msg.Content, width, mdStyle))
	}

	if md.Plan != nil {
		if showPlans {
			if !md.Error {
				parts = append(parts, render.Plan(md.Plan, false, width))
			}
			parts = append(parts, render.PlanDetails(md.Plan))
		} else {
			parts = append(parts, render.PlanSummary(md.Plan))
		}
	}
	if showPlans && md.Code != "" {
		parts = append(parts, dimText("Generated code:")+"\n"+lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(md.Code))
	}
	if md.Result != nil {
		parts = append(parts, render.Result(md.Result, width))
	}
	if md.HasVisualization {
		parts = append(parts, render.Chart(md.Visualization, width))
		parts = append(parts, dimText(fmt.Sprintf("Chart %d: /open %d to view it in the browser", chartN, chartN)))
	}
	if md.Elapsed > 0 {
		parts = append(parts, dimText("⏱  "+utils.FormatDuration(md.Elapsed.Seconds())))
	}
	return strings.Join(parts, "\n")
}

func (m roomModel) renderInput() string {
	var b strings.Builder
	b.WriteString("\n")
	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("63"))
	b.WriteString(box.Render(m.textarea.View()))
	b.WriteString("\n")
	help := "/help for commands | Enter: send | Up/Down: history | Ctrl+P: plans | Ctrl+L: clear"
	b.WriteString(lipgloss.NewStyle().Faint(true).Width(m.contentWidth()).Render(help))
	b.WriteString("\n")
	return b.String()
}

func (m roomModel) renderInfoBar() string {
	snap := m.sess.Snapshot()

	left := "📁 no dataset"
	if snap.Dataset != nil {
		left = fmt.Sprintf("📁 %s  %s rows × %s columns", snap.Dataset.Filename,
			render.FormatInt(snap.Dataset.Rows), render.FormatInt(snap.Dataset.Columns))
	}

	var status string
	switch {
	case m.healthErr != nil:
		status = utils.IconForStatus("unreachable") + " backend unreachable"
	case m.health == nil:
		status = utils.IconForStatus("") + " checking backend"
	default:
		status = utils.IconForStatus(m.health.Status) + " " + m.health.Status
		if !m.health.APIKeyConfigured {
			status += "  ⚠️  API key not configured"
		}
	}
	right := utils.HostOf(m.settings.ServerURL) + "  " + status

	bar := lipgloss.NewStyle().
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("#027ffd")).
		Padding(0, 1)
	w := m.width
	if w <= 0 {
		return bar.Render(left + "  |  " + right)
	}
	space := w - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if space < 2 {
		return bar.Width(w).Render(truncateLine(left+"  "+right, w-2))
	}
	return bar.Width(w).Render(left + strings.Repeat(" ", space) + right)
}

func (m roomModel) renderUploadView() string {
	snap := m.sess.Snapshot()
	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	b.WriteString(title.Render("📤 Upload your data"))
	b.WriteString("\n")
	b.WriteString(dimText(fmt.Sprintf("CSV or Excel (%s), up to %s",
		strings.Join(session.AllowedExtensions(), " "), utils.FormatBytes(session.MaxUploadSize))))
	b.WriteString(gap)
	if snap.UploadInFlight {
		b.WriteString(m.spin.View() + " Uploading and analyzing your file...")
	} else {
		b.WriteString(m.picker.View())
		b.WriteString("\n")
		b.WriteString(dimText("enter: select | ←/→: folders | q: quit"))
	}
	return b.String()
}

func (m roomModel) View() string {
	var b strings.Builder
	if m.sess.State() == session.NoDataset {
		b.WriteString(m.renderUploadView())
		b.WriteString("\n\n")
	} else {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		if m.confirm.Active() {
			b.WriteString(m.confirm.View())
			b.WriteString("\n")
		} else {
			b.WriteString(m.renderInput())
		}
	}
	b.WriteString(m.renderInfoBar())

	if v := m.toast.View(); v != "" {
		b.WriteString("\n")
		b.WriteString(v)
	}
	return b.String()
}

func noticeToast(n session.Notice) tea.Cmd {
	kind := uitk.ToastInfo
	switch n.Kind {
	case session.NoticeSuccess:
		kind = uitk.ToastSuccess
	case session.NoticeError:
		kind = uitk.ToastError
	}
	return uitk.ShowToast(n.Text, kind)
}

func dimText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(s)
}

func truncateLine(s string, w int) string {
	r := []rune(s)
	if w < 1 || len(r) <= w {
		return s
	}
	return string(r[:w-1]) + "…"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

type errorMsg struct{ err error }

func openURL(url string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "linux":
			cmd = exec.Command("xdg-open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			return errorMsg{err: fmt.Errorf("unsupported platform for opening urls: %s", runtime.GOOS)}
		}
		if err := cmd.Start(); err != nil {
			return errorMsg{err: fmt.Errorf("failed to open url %s: %v", url, err)}
		}
		return nil
	}
}
