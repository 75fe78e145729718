package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/mgomes/loxscript/lox"
)

// replStepQuota bounds each interactive input when the settings leave the
// quota unlimited, so a runaway loop hands control back to the prompt.
const replStepQuota = 50_000_000

var (
	accentColor    = lipgloss.Color("#3B82F6")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")

	promptStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(highlightColor)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)

type historyEntry struct {
	input  string
	output string
	errMsg string
}

type replModel struct {
	textInput   textinput.Model
	settings    Settings
	engine      *lox.Engine
	session     *lox.Session
	out         *bytes.Buffer
	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	width       int
	height      int
	showHelp    bool
	showVars    bool
	quitting    bool
	initialized bool
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	CtrlC key.Binding
	CtrlD key.Binding
	CtrlL key.Binding
	Tab   key.Binding
	CtrlV key.Binding
	CtrlH key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous command"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next command"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "execute"),
	),
	CtrlC: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	CtrlD: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "quit"),
	),
	CtrlL: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "clear"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "autocomplete"),
	),
	CtrlV: key.NewBinding(
		key.WithKeys("ctrl+v"),
		key.WithHelp("ctrl+v", "toggle vars"),
	),
	CtrlH: key.NewBinding(
		key.WithKeys("ctrl+k"),
		key.WithHelp("ctrl+k", "toggle help"),
	),
}

// replEngine builds the engine shared by both prompts, writing program
// output to out.
func replEngine(settings Settings, out io.Writer) (*lox.Engine, error) {
	cfg := settings.engineConfig()
	cfg.Stdout = out
	if cfg.StepQuota == 0 {
		cfg.StepQuota = replStepQuota
	}
	return lox.NewEngine(cfg)
}

func newREPLModel(settings Settings) (replModel, error) {
	ti := textinput.New()
	ti.Placeholder = "type a statement or expression..."
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = settings.REPL.Prompt

	out := new(bytes.Buffer)
	engine, err := replEngine(settings, out)
	if err != nil {
		return replModel{}, err
	}

	return replModel{
		textInput:  ti,
		settings:   settings,
		engine:     engine,
		session:    engine.NewSession(),
		out:        out,
		history:    make([]historyEntry, 0),
		cmdHistory: make([]string, 0),
		historyIdx: -1,
	}, nil
}

func (m replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.CtrlC), key.Matches(msg, keys.CtrlD):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.CtrlL):
			m.history = make([]historyEntry, 0)
			return m, nil

		case key.Matches(msg, keys.CtrlV):
			m.showVars = !m.showVars
			return m, nil

		case key.Matches(msg, keys.CtrlH):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, keys.Up):
			if len(m.cmdHistory) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.cmdHistory) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.historyIdx != -1 {
				if m.historyIdx < len(m.cmdHistory)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Tab):
			m = m.handleAutocomplete()
			return m, nil

		case key.Matches(msg, keys.Enter):
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, ":") {
				var cmd tea.Cmd
				m, cmd = m.handleCommand(input)
				m.textInput.SetValue("")
				m.historyIdx = -1
				return m, cmd
			}

			output, errMsg := m.evaluate(input)
			m.appendHistory(historyEntry{input: input, output: output, errMsg: errMsg})
			m.cmdHistory = appendBounded(m.cmdHistory, input, m.settings.REPL.HistorySize)
			m.textInput.SetValue("")
			m.historyIdx = -1
			return m, nil
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":clear", ":c":
		m.history = make([]historyEntry, 0)
	case ":vars", ":v":
		m.showVars = !m.showVars
	case ":reset", ":r":
		m.session = m.engine.NewSession()
		m.appendHistory(historyEntry{input: input, output: "Environment reset"})
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		m.appendHistory(historyEntry{input: input, errMsg: fmt.Sprintf("Unknown command: %s", cmd)})
	}
	return m, nil
}

func (m *replModel) appendHistory(entry historyEntry) {
	m.history = appendBounded(m.history, entry, m.settings.REPL.HistorySize)
}

// appendBounded appends v and drops the oldest entries beyond limit. A
// limit of zero keeps everything.
func appendBounded[T any](items []T, v T, limit int) []T {
	items = append(items, v)
	if limit > 0 && len(items) > limit {
		items = append(items[:0:0], items[len(items)-limit:]...)
	}
	return items
}

func (m replModel) handleAutocomplete() replModel {
	input := m.textInput.Value()
	lastWord := trailingIdentifier(input)
	if lastWord == "" {
		return m
	}

	completions := m.completions(lastWord)
	if len(completions) == 1 {
		prefix := strings.TrimSuffix(input, lastWord)
		m.textInput.SetValue(prefix + completions[0])
		m.textInput.CursorEnd()
	} else if len(completions) > 1 {
		m.appendHistory(historyEntry{output: "Completions: " + strings.Join(completions, ", ")})
	}

	return m
}

// completions returns the names starting with word. When nothing does, it
// falls back to fuzzy matches ranked by score.
func (m replModel) completions(word string) []string {
	candidates := append(lox.Keywords(), lspBuiltins...)
	for _, binding := range m.session.Globals() {
		candidates = append(candidates, binding.Name)
	}
	sort.Strings(candidates)
	candidates = dedupeSorted(candidates)

	var matches []string
	for _, candidate := range candidates {
		if strings.HasPrefix(candidate, word) && candidate != word {
			matches = append(matches, candidate)
		}
	}
	if len(matches) > 0 {
		return matches
	}
	for _, match := range fuzzy.Find(word, candidates) {
		if match.Str != word {
			matches = append(matches, match.Str)
		}
	}
	return matches
}

func dedupeSorted(items []string) []string {
	out := items[:0]
	for i, item := range items {
		if i > 0 && item == items[i-1] {
			continue
		}
		out = append(out, item)
	}
	return out
}

func trailingIdentifier(input string) string {
	start := len(input)
	for start > 0 && isIdentifierByte(input[start-1]) {
		start--
	}
	return input[start:]
}

func isIdentifierByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// evaluate runs one input in the session and returns what it printed and,
// separately, the error it stopped with.
func (m replModel) evaluate(input string) (string, string) {
	m.out.Reset()
	err := m.session.Eval(context.Background(), input)
	output := strings.TrimRight(m.out.String(), "\n")
	if err != nil {
		return output, err.Error()
	}
	return output, ""
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}

	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder

	header := headerStyle.Render("Lox REPL")
	b.WriteString(header + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", max(min(m.width-2, 60), 0))) + "\n\n")

	globals := m.session.Globals()
	reservedLines := 8
	if m.showHelp {
		reservedLines += 10
	}
	if m.showVars {
		reservedLines += len(globals) + 3
	}
	availableHeight := max(m.height-reservedLines, 1)

	historyStart := 0
	if len(m.history) > availableHeight {
		historyStart = len(m.history) - availableHeight
	}

	for _, entry := range m.history[historyStart:] {
		if entry.input != "" {
			b.WriteString(mutedStyle.Render("  › ") + m.renderInput(entry.input) + "\n")
		}
		for _, line := range splitNonEmpty(entry.output) {
			b.WriteString("  " + resultStyle.Render("→ "+line) + "\n")
		}
		for _, line := range splitNonEmpty(entry.errMsg) {
			b.WriteString("  " + errorStyle.Render("✗ "+line) + "\n")
		}
		b.WriteString("\n")
	}

	if m.showVars {
		b.WriteString(renderVarsPanel(globals, m.width))
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString(renderHelpPanel())
		b.WriteString("\n")
	}

	b.WriteString(m.textInput.View() + "\n\n")

	footer := helpKeyStyle.Render("ctrl+k") + helpDescStyle.Render(" help  ") +
		helpKeyStyle.Render("ctrl+v") + helpDescStyle.Render(" vars  ") +
		helpKeyStyle.Render("ctrl+l") + helpDescStyle.Render(" clear  ") +
		helpKeyStyle.Render("ctrl+c") + helpDescStyle.Render(" quit")
	b.WriteString(footer)

	return b.String()
}

func (m replModel) renderInput(input string) string {
	if !m.settings.REPL.Highlight {
		return input
	}
	return strings.TrimRight(highlightString(input, m.settings.REPL.Style), "\n")
}

func splitNonEmpty(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func renderVarsPanel(globals []lox.Binding, width int) string {
	if len(globals) == 0 {
		return borderStyle.Render(mutedStyle.Render("No variables defined"))
	}

	valueWidth := max(width-20, 20)
	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Variables"))
	varNameStyle := lipgloss.NewStyle().Foreground(highlightColor)
	for _, binding := range globals {
		value := runewidth.Truncate(binding.Value.String(), valueWidth, "…")
		lines = append(lines, fmt.Sprintf("  %s = %s", varNameStyle.Render(binding.Name), value))
	}
	return borderStyle.Render(strings.Join(lines, "\n"))
}

func renderHelpPanel() string {
	help := []struct {
		key  string
		desc string
	}{
		{"↑/↓", "Navigate command history"},
		{"Tab", "Autocomplete"},
		{"Enter", "Execute input"},
		{":help", "Toggle this help"},
		{":vars", "Toggle variables panel"},
		{":clear", "Clear history"},
		{":reset", "Reset environment"},
		{":quit", "Exit REPL"},
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Help"))
	for _, h := range help {
		line := fmt.Sprintf("  %s  %s",
			helpKeyStyle.Render(fmt.Sprintf("%-8s", h.key)),
			helpDescStyle.Render(h.desc))
		lines = append(lines, line)
	}

	return borderStyle.Render(strings.Join(lines, "\n"))
}

func replCommand(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	configPath := fs.String("config", "", "settings file to load")
	plain := fs.Bool("plain", false, "use the line prompt even on a terminal")
	if err := fs.Parse(args); err != nil {
		return usageErrorf("lox repl: %v", err)
	}
	settings, err := cliSettings(*configPath)
	if err != nil {
		return err
	}
	if *plain || !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return runLineREPL(os.Stdin, os.Stdout, os.Stderr, settings)
	}
	return runREPL(settings)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runREPL(settings Settings) error {
	model, err := newREPLModel(settings)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// runLineREPL reads one input per line. Errors are reported and the prompt
// continues; an interrupt stops only the running input.
func runLineREPL(in io.Reader, out, errOut io.Writer, settings Settings) error {
	engine, err := replEngine(settings, out)
	if err != nil {
		return err
	}
	session := engine.NewSession()
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, settings.REPL.Prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case ":quit", ":q":
			return nil
		case ":reset", ":r":
			session = engine.NewSession()
			continue
		case ":vars", ":v":
			for _, binding := range session.Globals() {
				fmt.Fprintf(out, "%s = %s\n", binding.Name, binding.Value)
			}
			continue
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err := session.Eval(ctx, line)
		stop()
		if err != nil {
			reportScriptError(errOut, line, err)
		}
	}
}
