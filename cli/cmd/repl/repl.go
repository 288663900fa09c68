package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/lispy/lang"
	"github.com/ardnew/lispy/log"
)

// editDoneMsg is sent when an editor session produced forms to evaluate.
type editDoneMsg struct{ forms []lang.Expr }

// editCancelledMsg is sent when the user emptied the buffer or declined to
// fix a parse error.
type editCancelledMsg struct{}

// editErrorMsg is sent when the editor could not be run.
type editErrorMsg struct{ err error }

// evalDoneMsg carries the results of a background evaluation.
type evalDoneMsg struct{ results []Result }

// evaluation is the input being evaluated off the update loop, so that
// Ctrl+C can cancel it.
type evaluation struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	forms  []lang.Expr
}

// run evaluates the forms in s and reports the results.
func (e *evaluation) run(s *Session) tea.Msg {
	return evalDoneMsg{results: s.Eval(e.ctx, e.forms)}
}

const (
	evalPrompt = "λ "
	contPrompt = "… "
	ctrlPrompt = ": "
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help         Print this help
  env          List names bound in the session
  load FILE    Evaluate the forms in FILE
  edit         Edit and evaluate a buffer in $EDITOR
  clear        Clear screen
  quit         Exit REPL

Usage:
  Type an expression and press Enter to evaluate it
  Unclosed lists continue on the next line
  Completions for bound names appear as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C to discard input, or on an empty line to exit; Ctrl+D exits
  Press Ctrl+C while an expression is evaluating to interrupt it
`
}

// inputMode is the kind of line being entered.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	session      *Session
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches
	wordStart    int
	wordEnd      int
	suggIdx      int
	tabActive    bool
	preTabText   string
	preTabCursor int
	width        int
	quitting     bool
	mode         inputMode
	pendingLines []string
	saved        [2]savedInput // per-mode input while the other mode is active
	running      *evaluation
}

// savedInput is the input text and cursor of an inactive mode.
type savedInput struct {
	text   string
	cursor int
}

// Run starts the interactive REPL on the terminal. History is kept in
// historyDir when it is not empty.
func Run(
	ctx context.Context,
	s *Session,
	historyDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	path := ""
	if historyDir != "" {
		path = filepath.Join(historyDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("history", path),
		slog.Int("history_entries", history.Len()),
	)

	p := tea.NewProgram(newModel(ctx, s, history, logger), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	s *Session,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    s,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	// Output printed while preloading sources.
	if text := m.session.TakePrinted(); text != "" {
		return tea.Batch(textinput.Blink, tea.Println(strings.TrimSuffix(text, "\n")))
	}

	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-lipgloss.Width(evalPrompt)-2, 1)

		return m, nil

	case editDoneMsg:
		return m.startEval(msg.forms)

	case evalDoneMsg:
		if m.running != nil {
			m.running.cancel(nil)
			m.running = nil
		}

		return m, printResults(msg.results)

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render(ErrorText(msg.err)))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hintLine())
	b.WriteString("\n")

	return b.String()
}

// hintLine returns the line shown under the input: the history position, a
// usage hint, a signature hint, or completion candidates.
func (m model) hintLine() string {
	if m.running != nil {
		return hintStyle.Render("Evaluating, press Ctrl+C to interrupt")
	}

	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if m.mode == modeEval && !m.tabActive {
		if c := detectCall(input, m.input.Position()); c.inCall {
			if params, ok := m.session.Signature(c.name); ok {
				return renderSignatureHint(c.name, params, c.argIndex)
			}
		}
	}

	if len(m.matches) > 0 {
		return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
	}

	if strings.TrimSpace(input) != "" {
		return ""
	}

	switch {
	case m.mode == modeCtrl:
		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")
	case m.session.Pending():
		return hintStyle.Render("Continue the expression, or press Ctrl+C to discard it")
	default:
		return hintStyle.Render("Type an expression or press Esc for commands")
	}
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
	)

	// The session belongs to the evaluation until its results arrive.
	if m.running != nil {
		if msg.Type == tea.KeyCtrlC {
			m.running.cancel(ErrInterrupted)
		}

		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" && !m.session.Pending() {
			m.quitting = true

			return m, tea.Quit
		}

		m.session.Reset()
		m.pendingLines = nil
		m.setPrompt()
		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			m.tabActive = false
			refreshMatches(&m, true)

			return m, nil
		}

		return m.executeInput()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the selected completion candidate by step, starting
// tab-cycling if it is not active. A single candidate is accepted at once.
func (m model) cycle(step int) model {
	switch n := len(m.matches); {
	case n == 0:
		return m

	case n == 1:
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n

	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0

		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the word being completed with replacement and
// moves the cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes completions for the current input. With
// autoConfirm set, a sole candidate equal to the typed word is accepted so
// the candidate bar disappears.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

// setPrompt shows the prompt for the current mode and pending state.
func (m *model) setPrompt() {
	switch {
	case m.mode == modeCtrl:
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	case m.session.Pending():
		m.input.Prompt = promptStyle.Render(contPrompt)
	default:
		m.input.Prompt = promptStyle.Render(evalPrompt)
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	line := m.input.Value()
	if strings.TrimSpace(line) == "" && !m.session.Pending() {
		return m, nil
	}

	m.input.SetValue("")
	m.saved = [2]savedInput{}
	m.matches = nil

	if m.mode == modeCtrl {
		line = strings.TrimSpace(line)
		if err := m.history.Add(line, modeCtrl); err != nil {
			m.logger.DebugContext(m.ctxFunc(), "history write failed", slog.Any("error", err))
		}

		m.historyIdx = m.history.Len()

		return m.executeCommand(line)
	}

	prompt := evalPrompt
	if m.session.Pending() {
		prompt = contPrompt
	}

	echo := tea.Println(promptStyle.Render(prompt) + inputStyle.Render(line))

	m.pendingLines = append(m.pendingLines, line)

	forms, done, err := m.session.Read(line)
	m.setPrompt()

	if !done {
		return m, echo
	}

	if err := m.history.Add(strings.Join(m.pendingLines, " "), modeEval); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "history write failed", slog.Any("error", err))
	}

	m.pendingLines = nil
	m.historyIdx = m.history.Len()

	if err != nil {
		return m, tea.Sequence(echo, printResults([]Result{{Err: err}}))
	}

	m, run := m.startEval(forms)

	return m, tea.Sequence(echo, run)
}

// startEval evaluates forms in the background. Keys other than Ctrl+C are
// ignored until the results arrive.
func (m model) startEval(forms []lang.Expr) (model, tea.Cmd) {
	ctx, cancel := context.WithCancelCause(m.ctxFunc())

	run := &evaluation{ctx: ctx, cancel: cancel, forms: forms}
	m.running = run
	s := m.session

	return m, func() tea.Msg { return run.run(s) }
}

// resultLines returns the styled lines shown for results: the output of
// print, then the value or error of each form.
func resultLines(results []Result) []string {
	lines := make([]string, 0, len(results))

	for _, res := range results {
		if res.Printed != "" {
			lines = append(lines, strings.TrimSuffix(res.Printed, "\n"))
		}

		text := res.Text()

		switch {
		case res.Err != nil:
			lines = append(lines, errorStyle.Render(text))
		case text != "":
			lines = append(lines, resultStyle.Render(text))
		}
	}

	return lines
}

// printResults prints each result above the input line.
func printResults(results []Result) tea.Cmd {
	lines := resultLines(results)
	cmds := make([]tea.Cmd, len(lines))

	for i, line := range lines {
		cmds[i] = tea.Println(line)
	}

	return tea.Sequence(cmds...)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", cmd),
		slog.String("arg", arg),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "env":
		return m, tea.Sequence(echo, tea.Println(m.listNames(arg)))

	case "l", "load":
		if arg == "" {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("usage: load FILE")))
		}

		next, run := m.load(arg)

		return next, tea.Sequence(echo, run)

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Sequence(echo, tea.Println(
			errorStyle.Render("unknown command: "+cmd+" (try 'help')"),
		))
	}
}

// load evaluates the forms of the named file in the session.
func (m model) load(name string) (model, tea.Cmd) {
	file, err := os.Open(name)
	if err != nil {
		return m, tea.Println(errorStyle.Render(ErrorText(err)))
	}
	defer file.Close()

	forms, err := m.session.ReadSource(m.ctxFunc(), name, file)
	if err != nil {
		return m, printResults([]Result{{Err: err}})
	}

	return m.startEval(forms)
}

// edit suspends the program to run the editor on the session buffer.
func (m model) edit() tea.Cmd {
	cmd := &editCommand{session: m.session, ctxFunc: m.ctxFunc}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editCancelledMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.forms == nil:
			return editCancelledMsg{}
		default:
			return editDoneMsg{forms: cmd.forms}
		}
	})
}

// listNames renders the bound names whose text contains filter, each with a
// short preview of its value.
func (m model) listNames(filter string) string {
	var b strings.Builder

	env := m.session.Environment()

	for _, name := range env.Names() {
		if !strings.Contains(name, filter) {
			continue
		}

		x, err := env.Lookup(lang.Symbol(name))
		if err != nil {
			continue
		}

		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview(x)))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// preview returns the canonical text of x cut to a fixed width.
func preview(x lang.Expr) string {
	const width = 40

	text := lang.Format(x)
	if r := []rune(text); len(r) > width {
		return string(r[:width-3]) + "..."
	}

	return text
}

// historyStep moves through history by step (-1 older, +1 newer). With
// sameMode set, entries of the other mode are skipped; otherwise the mode
// follows the entry. Moving past the newest entry clears the input.
func (m model) historyStep(step int, sameMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil || (sameMode && entry.Mode != m.mode) {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchToMode switches to mode, saving the input of the current mode and
// restoring the input last entered in the new one.
func (m model) switchToMode(mode inputMode) model {
	m.saved[m.mode].text = m.input.Value()
	m.saved[m.mode].cursor = m.input.Position()

	m.mode = mode
	m.setPrompt()
	m.input.SetValue(m.saved[mode].text)
	m.input.SetCursor(m.saved[mode].cursor)
	refreshMatches(&m, false)

	return m
}
