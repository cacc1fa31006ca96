// Package review is the interactive terminal browser for run results and
// history.
package review

import (
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/store"
)

// Lines per job item in the list view (title + subtitle + blank separator).
const itemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	itemTitleStyle = lipgloss.NewStyle().
			Bold(true)

	itemSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(16)

	detailValueStyle = lipgloss.NewStyle()

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

// scoreColor maps a fit label to a terminal color.
var scoreColor = map[string]lipgloss.Color{
	"Exceptional": "46",
	"Strong":      "40",
	"Moderate":    "220",
	"Weak":        "208",
	"Poor":        "196",
}

// item is one row in either pane. job is set for shortlisted results and
// nil for history entries, which only keep scores.
type item struct {
	id        string
	title     string
	company   string
	location  string
	url       string
	firstSeen time.Time
	scores    map[string]int
	job       *model.AnalyzedJob
}

func (it item) best() int {
	best := 0
	for _, s := range it.scores {
		if s > best {
			best = s
		}
	}
	return best
}

func fromResults(results *model.Results) []item {
	if results == nil {
		return nil
	}
	items := make([]item, 0, len(results.Jobs))
	for i := range results.Jobs {
		j := &results.Jobs[i]
		scores := make(map[string]int, len(j.Analyses))
		for k, a := range j.Analyses {
			scores[k] = a.FitScore
		}
		items = append(items, item{
			id:        j.JobID,
			title:     j.Title,
			company:   j.Company,
			location:  j.Location,
			url:       j.URL,
			firstSeen: j.ScrapedAt,
			scores:    scores,
			job:       j,
		})
	}
	sort.SliceStable(items, func(a, b int) bool { return items[a].best() > items[b].best() })
	return items
}

func fromHistory(entries []store.Entry) []item {
	items := make([]item, 0, len(entries))
	for _, e := range entries {
		items = append(items, item{
			id:        e.ID,
			title:     e.Title,
			company:   e.Company,
			url:       e.URL,
			firstSeen: e.FirstSeen,
			scores:    e.Scores,
		})
	}
	return items
}

type reviewModel struct {
	profile       string
	meta          model.RunMetadata
	shortlist     []item
	history       []item
	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int // 0=left, 1=right
	leftCursor    int
	rightCursor   int
	width         int
	height        int
	ready         bool

	// Detail view state
	view            viewState
	detail          item
	detailViewport  viewport.Model
	showDescription bool

	openURL func(string)
}

func newReviewModel(profile string, results *model.Results, entries []store.Entry) reviewModel {
	m := reviewModel{
		profile:   profile,
		shortlist: fromResults(results),
		history:   fromHistory(entries),
		openURL:   openURL,
	}
	if results != nil {
		m.meta = results.Metadata
	}
	return m
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m reviewModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	// Forward other keys (pgup/pgdn/home/end) to the active viewport.
	var cmd tea.Cmd
	if m.activePane == 0 {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m reviewModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		if m.detail.url != "" {
			m.openURL(m.detail.url)
		}
		return m, nil
	case "r":
		if m.detail.job != nil && m.detail.job.Description != "" {
			m.showDescription = !m.showDescription
			m.detailViewport.SetContent(m.renderDetail())
			m.detailViewport.SetYOffset(0)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m *reviewModel) moveCursor(delta int) {
	if m.activePane == 0 {
		m.leftCursor = clamp(m.leftCursor+delta, 0, max(len(m.shortlist)-1, 0))
	} else {
		m.rightCursor = clamp(m.rightCursor+delta, 0, max(len(m.history)-1, 0))
	}
}

func (m *reviewModel) ensureCursorVisible() {
	vp, cursor := &m.leftViewport, m.leftCursor
	if m.activePane == 1 {
		vp, cursor = &m.rightViewport, m.rightCursor
	}

	top := cursor * itemHeight
	bottom := top + itemHeight - 1

	if top < vp.YOffset {
		vp.SetYOffset(top)
	} else if bottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(bottom - vp.Height + 1)
	}
}

func (m reviewModel) openDetailView() (tea.Model, tea.Cmd) {
	items, cursor := m.shortlist, m.leftCursor
	if m.activePane == 1 {
		items, cursor = m.history, m.rightCursor
	}
	if len(items) == 0 {
		return m, nil
	}

	m.view = viewDetail
	m.detail = items[cursor]
	m.showDescription = false
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *reviewModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(paneWidth, paneHeight)
		m.rightViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = paneWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = paneWidth
		m.rightViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *reviewModel) recalcContent() {
	m.leftViewport.SetContent(renderItems(m.shortlist, m.leftCursor, m.activePane == 0))
	m.rightViewport.SetContent(renderItems(m.history, m.rightCursor, m.activePane == 1))
}

func (m reviewModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m reviewModel) viewList() string {
	paneWidth := m.leftViewport.Width

	leftHeader := fmt.Sprintf(" Shortlisted (%d)", len(m.shortlist))
	rightHeader := fmt.Sprintf(" History (%d)", len(m.history))

	leftHeaderRendered := inactiveHeaderStyle.Render(leftHeader)
	rightHeaderRendered := inactiveHeaderStyle.Render(rightHeader)
	leftBorder := inactiveBorderStyle.Width(paneWidth)
	rightBorder := inactiveBorderStyle.Width(paneWidth)
	if m.activePane == 0 {
		leftHeaderRendered = activeHeaderStyle.Render(leftHeader)
		leftBorder = activeBorderStyle.Width(paneWidth)
	} else {
		rightHeaderRendered = activeHeaderStyle.Render(rightHeader)
		rightBorder = activeBorderStyle.Width(paneWidth)
	}

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(leftHeaderRendered),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(rightHeaderRendered),
	)
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		leftBorder.Render(m.leftViewport.View()), " ", rightBorder.Render(m.rightViewport.View()))

	statusText := fmt.Sprintf(" %s | %s    ←/→/Tab switch  ↑/↓ cursor  Enter detail  q quit",
		m.profile, m.runSummary())
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func (m reviewModel) runSummary() string {
	if m.meta.RunTimestamp.IsZero() {
		return "no runs yet"
	}
	return fmt.Sprintf("last run %s: %d searched, %d new, %d analyzed, $%.4f",
		m.meta.RunTimestamp.Local().Format("2006-01-02 15:04"),
		m.meta.TotalSearched, m.meta.NewJobsFound, m.meta.JobsAnalyzed, m.meta.Usage.CostUSD)
}

func (m reviewModel) viewDetail() string {
	title := detailTitleStyle.Render("Job Details")

	border := activeBorderStyle.Width(m.width - 2)
	content := border.Render(m.detailViewport.View())

	statusText := " o open URL  esc/backspace back  ↑/↓ scroll  q quit"
	if m.detail.job != nil && m.detail.job.Description != "" {
		statusText = " o open URL  r desc  esc/backspace back  ↑/↓ scroll  q quit"
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return title + "\n" + content + "\n" + statusBar
}

func (m reviewModel) renderDetail() string {
	it := m.detail
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	addField("Title", it.title)
	addField("Company", it.company)
	addField("Location", it.location)
	addField("Job ID", it.id)
	if !it.firstSeen.IsZero() {
		addField("First Seen", it.firstSeen.Local().Format("2006-01-02 15:04 MST"))
	}
	addField("URL", it.url)

	wrapWidth := max(m.width-8, 20)
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		return dividerStyle.Render(label + fill)
	}

	b.WriteByte('\n')
	b.WriteString(divider("── Fit ") + "\n\n")
	for _, key := range sortedKeys(it.scores) {
		addField(strings.ToUpper(key), renderScore(it.scores[key]))
		if it.job == nil {
			continue
		}
		a := it.job.Analyses[key]
		addField("Category", a.Category)
		if a.Justification != "" {
			b.WriteString(bodyStyle.Render(wordWrap(a.Justification, wrapWidth)) + "\n")
		}
		if a.PositioningAdvice != "" {
			b.WriteString(hintStyle.Render(wordWrap("Tip: "+a.PositioningAdvice, wrapWidth)) + "\n")
		}
		b.WriteByte('\n')
	}

	if it.job != nil && it.job.LocationAnalysis != nil {
		la := it.job.LocationAnalysis
		b.WriteString(divider("── Location ") + "\n\n")
		addField("Country", la.Country)
		addField("Region", la.Region)
		addField("US based", fmt.Sprintf("%s (%.0f%% confident)", la.IsUS, la.Confidence*100))
		if la.Evidence != "" {
			b.WriteString(hintStyle.Render(wordWrap(la.Evidence, wrapWidth)) + "\n")
		}
		b.WriteByte('\n')
	}

	if it.job != nil && it.job.Description != "" {
		if m.showDescription {
			b.WriteString(divider("── Job Description ") + "\n\n")
			b.WriteString(bodyStyle.Render(wordWrap(it.job.Description, wrapWidth)) + "\n")
		} else {
			b.WriteString(hintStyle.Render("  press r to read job description") + "\n")
		}
	}

	return b.String()
}

func renderScore(score int) string {
	label := model.FitLabel(score)
	return lipgloss.NewStyle().Foreground(scoreColor[label]).Render(fmt.Sprintf("%d%% %s", score, label))
}

func renderItems(items []item, cursor int, isActive bool) string {
	if len(items) == 0 {
		return "  (no jobs)"
	}

	var b strings.Builder
	for i, it := range items {
		titleSt := itemTitleStyle
		subtitleSt := itemSubtitleStyle
		prefix := "  "
		if isActive && i == cursor {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(fmt.Sprintf("%3d%%  %s", it.best(), it.title)))
		b.WriteByte('\n')

		seen := "n/a"
		if !it.firstSeen.IsZero() {
			seen = it.firstSeen.Local().Format("2006-01-02")
		}
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("      %s · %s", it.company, seen)))
		b.WriteByte('\n')

		if i < len(items)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the split-pane review TUI: the latest run's shortlisted jobs
// on the left and every job in history on the right. results may be nil when
// the profile has never run.
func Run(profile string, results *model.Results, entries []store.Entry) error {
	m := newReviewModel(profile, results, entries)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
