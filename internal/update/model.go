package update

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/sharpei/internal/api"
	domainmodel "github.com/sandeepkv93/sharpei/internal/model"
	"github.com/sandeepkv93/sharpei/internal/reorder"
	"github.com/sandeepkv93/sharpei/internal/scheduler"
	"github.com/sandeepkv93/sharpei/internal/tasktree"
)

// Mode is what the keyboard is currently driving.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeQuickAdd
	ModeSubtask
	ModeSearch
	ModePalette
	ModeConfirmDelete
	ModeEdit
	ModeDescription
)

func (m Mode) String() string {
	switch m {
	case ModeQuickAdd:
		return "add"
	case ModeSubtask:
		return "subtask"
	case ModeSearch:
		return "search"
	case ModePalette:
		return "command"
	case ModeConfirmDelete:
		return "confirm"
	case ModeEdit:
		return "edit"
	case ModeDescription:
		return "description"
	default:
		return "browse"
	}
}

type StatusBar struct {
	Text    string
	IsError bool
}

type Options struct {
	Logger       *log.Logger
	ErrorDisplay time.Duration
	StateFile    string
	Now          func() time.Time
	// Due, when set, announces tasks turning due or overdue while the
	// board is open. The caller starts and stops it.
	Due *scheduler.Engine
}

type Model struct {
	Tree             *tasktree.Tree
	Categories       []domainmodel.Category
	SelectedCategory string
	Search           string
	ShowArchived     bool
	ShowDetails      bool
	HelpVisible      bool
	Cursor           int
	Mode             Mode
	PendingDelete    string
	SubtaskParent    string
	EditTarget       string
	Status           StatusBar
	Loading          bool
	Quitting         bool
	LastError        error

	store         api.Store
	coordinator   *reorder.Coordinator
	due           *scheduler.Engine
	logger        *log.Logger
	now           func() time.Time
	errorDisplay  time.Duration
	stateFilePath string
	statusSeq     int
	width         int

	input     textinput.Model
	spinner   spinner.Model
	helpModel help.Model
}

// Messages produced by store commands. Each carries the error of the call
// that produced it; a nil error means success.

type tasksLoadedMsg struct {
	Tasks []domainmodel.Task
	Err   error
}

type categoriesLoadedMsg struct {
	Categories []domainmodel.Category
	Err        error
}

type taskSavedMsg struct {
	Task domainmodel.Task
	Err  error
}

type mutationDoneMsg struct {
	Status           string
	Refetch          bool
	ReloadCategories bool
	Err              error
}

type moveDoneMsg struct {
	Outcome reorder.Outcome
	Err     error
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

// ClearStatusMsg clears the status line if nothing newer replaced it.
type ClearStatusMsg struct {
	Seq int
}

type dueMsg struct {
	Event scheduler.DueEvent
}

type AppErrorMsg struct {
	Err error
}

func NewModel(store api.Store, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	display := opts.ErrorDisplay
	if display <= 0 {
		display = 4 * time.Second
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := Model{
		Tree:          tasktree.New(),
		store:         store,
		coordinator:   reorder.NewCoordinator(store, logger),
		due:           opts.Due,
		logger:        logger.WithPrefix("tui"),
		now:           now,
		errorDisplay:  display,
		stateFilePath: strings.TrimSpace(opts.StateFile),
		Loading:       true,
	}
	m.initBubbleComponents()

	if m.stateFilePath != "" {
		state, err := loadUIState(m.stateFilePath)
		if err != nil {
			m.logger.Warn("ignoring unreadable state file", "path", m.stateFilePath, "err", err)
		} else {
			m.applyUIState(state)
		}
	}
	return m
}

func (m *Model) initBubbleComponents() {
	m.input = textinput.New()
	m.input.CharLimit = 512
	m.input.Width = 60

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

// Init fetches categories and the first task list. NewModel already raised
// the loading flag for that fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadCategoriesCmd(m.store), m.spinner.Tick, loadTasksCmd(m.store, m.taskQuery()), waitForDue(m.due))
}

// startLoad raises the loading flag and fetches the task list for the
// current filters.
func (m *Model) startLoad() tea.Cmd {
	m.Loading = true
	return tea.Batch(m.spinner.Tick, loadTasksCmd(m.store, m.taskQuery()))
}

func (m Model) taskQuery() api.TaskQuery {
	return api.TaskQuery{
		CategoryID:   m.SelectedCategory,
		Query:        m.Search,
		ShowArchived: m.ShowArchived,
	}
}

func (m *Model) setStatus(text string, isError bool) tea.Cmd {
	m.statusSeq++
	seq := m.statusSeq
	m.Status = StatusBar{Text: text, IsError: isError}
	return tea.Tick(m.errorDisplay, func(time.Time) tea.Msg { return ClearStatusMsg{Seq: seq} })
}

// fail records err in the transient error slot and logs it. The UI stays
// usable; the user re-triggers the action if they want a retry.
func (m *Model) fail(op string, err error) tea.Cmd {
	m.LastError = err
	m.logger.Error(op, "err", err)
	return m.setStatus(err.Error(), true)
}

func (m Model) selectedRow() (tasktree.Row, bool) {
	rows := m.Tree.Rows()
	if m.Cursor < 0 || m.Cursor >= len(rows) {
		return tasktree.Row{}, false
	}
	return rows[m.Cursor], true
}

// selectedTopLevel returns the selected task, or the parent of a selected
// subtask.
func (m Model) selectedTopLevel() (domainmodel.Task, bool) {
	row, ok := m.selectedRow()
	if !ok {
		return domainmodel.Task{}, false
	}
	if row.Depth == 0 {
		return row.Task, true
	}
	return m.Tree.FindByID(row.Task.ParentID)
}

func (m *Model) clampCursor() {
	n := len(m.Tree.Rows())
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

// focusTask moves the cursor onto id if it is visible.
func (m *Model) focusTask(id string) {
	for i, row := range m.Tree.Rows() {
		if row.Task.ID == id {
			m.Cursor = i
			return
		}
	}
}

func (m Model) categoryName(id string) string {
	for _, c := range m.Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}
