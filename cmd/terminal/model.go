package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sevigo/titleforge/internal/core"
)

const asciiLogo = `
╔══════════════════════════════════════════════════════════════════╗
║                                                                  ║
║   ████████╗██╗████████╗██╗     ███████╗███████╗ ██████╗          ║
║   ╚══██╔══╝██║╚══██╔══╝██║     ██╔════╝██╔════╝██╔════╝          ║
║      ██║   ██║   ██║   ██║     █████╗  █████╗  ██║  ███╗         ║
║      ██║   ██║   ██║   ██║     ██╔══╝  ██╔══╝  ██║   ██║         ║
║      ██║   ██║   ██║   ███████╗███████╗██║     ╚██████╔╝         ║
║      ╚═╝   ╚═╝   ╚═╝   ╚══════╝╚══════╝╚═╝      ╚═════╝          ║
║                                                                  ║
║               TITLEFORGE PIPELINE MONITOR v1.0                   ║
║                                                                  ║
╚══════════════════════════════════════════════════════════════════╝
`

type model struct {
	styles    styles
	serverURL string

	// UI Components
	viewport  viewport.Model
	textarea  textarea.Model
	spinner   spinner.Model
	isLoading bool

	// Session State
	jobs      []core.Job
	connected bool
	history   []string
}

func initialModel(theme ThemeName, serverURL string) *model {
	styles := GetTheme(theme)
	ta := textarea.New()
	ta.Placeholder = "/submit <channel> <email>  or  /help"
	ta.Focus()
	ta.Prompt = styles.prompt.Render("► ")
	ta.CharLimit = 300
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))

	return &model{
		styles:    styles,
		serverURL: serverURL,
		textarea:  ta,
		spinner:   sp,
		isLoading: true,
		history:   []string{styles.ascii.Render(asciiLogo), "", "⚙ CONNECTING TO TITLEFORGE SERVER..."},
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(loadJobsCmd(m.serverURL), m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	m.spinner, spCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			m.textarea.Reset()
			return m, m.processCommand(input)
		}

	case jobsLoadedMsg:
		m.isLoading = false
		if msg.err != nil {
			if m.connected {
				m.appendHistory(m.styles.error.Render("⚠ lost connection: " + msg.err.Error()))
			}
			m.connected = false
		} else {
			if !m.connected {
				m.appendHistory(m.styles.success.Render("✓ CONNECTED"), "", "Type /help for commands.")
			}
			m.connected = true
			m.jobs = msg.jobs
		}
		return m, refreshTickCmd()

	case refreshTickMsg:
		return m, loadJobsCmd(m.serverURL)

	case submitResultMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendHistory(m.styles.error.Render("⚠ " + msg.err.Error()))
			return m, nil
		}
		m.appendHistory(
			m.styles.success.Render(fmt.Sprintf("✓ JOB ACCEPTED: %s", msg.jobID)),
			m.styles.inactive.Render(msg.message),
		)
		return m, loadJobsCmd(m.serverURL)

	case errorMsg:
		m.isLoading = false
		m.appendHistory(m.styles.error.Render("⚠ " + msg.err.Error()))
		return m, nil

	case tea.WindowSizeMsg:
		m.styles.header.Width(msg.Width - 4)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 10
		m.textarea.SetWidth(msg.Width - 10)
		m.viewport.SetContent(strings.Join(m.history, "\n"))
	}

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m *model) View() string {
	status := m.styles.inactive.Render(m.statusLine())

	var loadingIndicator string
	if m.isLoading {
		loadingIndicator = " " + m.spinner.View() + " " + m.styles.success.Render("WORKING...")
	}

	return m.styles.app.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.styles.viewport.Render(m.viewport.View()),
			m.renderJobsTable(),
			m.styles.footer.Render(
				lipgloss.JoinHorizontal(lipgloss.Left,
					m.textarea.View(),
					loadingIndicator,
				),
			),
			status,
		),
	)
}

func (m *model) statusLine() string {
	parts := []string{fmt.Sprintf("SERVER: %s", m.serverURL)}
	if m.connected {
		parts = append(parts, m.styles.success.Render("● ONLINE"))
	} else {
		parts = append(parts, m.styles.error.Render("○ OFFLINE"))
	}
	parts = append(parts, fmt.Sprintf("%d jobs", len(m.jobs)))
	return strings.Join(parts, " │ ")
}

func (m *model) renderJobsTable() string {
	if len(m.jobs) == 0 {
		return m.styles.inactive.Render("\n  no jobs yet. submit one with /submit <channel> <email>\n")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.styles.command.Render(fmt.Sprintf("  %-24s %-20s %-14s %s", "JOB", "CHANNEL", "STATUS", "DETAIL")))
	b.WriteString("\n")
	for _, job := range m.jobs {
		b.WriteString(fmt.Sprintf("  %-24s %-20s %-14s %s\n",
			truncate(job.JobID, 24),
			truncate(job.Channel, 20),
			m.renderStatus(job.Status),
			truncate(jobDetail(&job), 48),
		))
	}
	return b.String()
}

func (m *model) renderStatus(status core.Status) string {
	padded := fmt.Sprintf("%-14s", status)
	switch status {
	case core.StatusCompleted:
		return m.styles.success.Render(padded)
	case core.StatusFailed:
		return m.styles.error.Render(padded)
	default:
		return m.styles.warning.Render(padded)
	}
}

func jobDetail(job *core.Job) string {
	switch job.Status {
	case core.StatusFailed:
		return job.Error
	case core.StatusCompleted:
		return fmt.Sprintf("%d titles improved", len(job.ImprovedTitles))
	default:
		return ""
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func (m *model) appendHistory(lines ...string) {
	m.history = append(m.history, lines...)
	m.viewport.SetContent(strings.Join(m.history, "\n"))
	m.viewport.GotoBottom()
}

func (m *model) processCommand(input string) tea.Cmd {
	m.appendHistory(m.styles.prompt.Render("► ") + input)

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}
	command := parts[0]
	args := parts[1:]

	switch command {
	case "/submit":
		if len(args) < 2 {
			m.appendHistory(m.styles.error.Render("USAGE: /submit <channel name> <email>"))
			return nil
		}
		email := args[len(args)-1]
		channel := strings.Join(args[:len(args)-1], " ")
		m.isLoading = true
		m.appendHistory(m.styles.command.Render(fmt.Sprintf("→ Submitting %q...", channel)))
		return tea.Batch(m.spinner.Tick, submitJobCmd(m.serverURL, channel, email))

	case "/refresh", "/r":
		m.isLoading = true
		return tea.Batch(m.spinner.Tick, loadJobsCmd(m.serverURL))

	case "/help", "/h":
		helpText := m.styles.success.Render("AVAILABLE COMMANDS:") + `

  /submit <channel> <email>   Submit a channel for title improvement.
  /refresh, /r                Refresh the job list now.
  /help                       Show this help message.
  /exit, /quit                Exit the monitor.

  ` + m.styles.inactive.Render("The job list refreshes automatically every few seconds.")
		m.appendHistory("", helpText)
		return nil

	case "/exit", "/quit":
		return tea.Quit

	default:
		m.appendHistory(
			m.styles.error.Render(fmt.Sprintf("UNKNOWN COMMAND: %s", command)),
			m.styles.inactive.Render("Type /help for assistance."),
		)
		return nil
	}
}
