package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyfocus/internal/planner"
)

const chatTimeout = time.Minute

// chatModel is a conversation with the study coach. While the input is
// focused it owns every key.
type chatModel struct {
	coach  Coach
	width  int
	height int

	history  []planner.Message
	fallback map[int]bool // history index -> built-in reply
	input    textinput.Model
	viewport viewport.Model
	waiting  bool
	spinner  spinner.Model
}

func newChatModel(c Coach) chatModel {
	in := textinput.New()
	in.Placeholder = "Ask about study techniques, motivation or a topic"
	in.Prompt = "> "
	in.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = accentStyle

	m := chatModel{
		coach:    c,
		fallback: map[int]bool{},
		input:    in,
		viewport: viewport.New(0, 0),
		spinner:  sp,
	}
	m.syncViewport()
	return m
}

func (c *chatModel) setSize(w, h int) {
	c.width = w
	c.height = h
	c.viewport.Width = max(10, w-8)
	c.viewport.Height = max(3, h-9)
	c.input.Width = max(10, w-12)
	c.syncViewport()
	c.viewport.GotoBottom()
}

func (c chatModel) focus() (chatModel, tea.Cmd) {
	return c, c.input.Focus()
}

func (c chatModel) update(msg tea.Msg) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case chatReplyMsg:
		c.waiting = false
		c.history = append(c.history, planner.Message{Role: planner.RoleCoach, Content: msg.answer.Text})
		if msg.answer.Fallback {
			c.fallback[len(c.history)-1] = true
		}
		c.syncViewport()
		c.viewport.GotoBottom()
		return c, nil

	case spinner.TickMsg:
		if !c.waiting {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		c.syncViewport()
		return c, cmd

	case statusMsg:
		if msg.isError {
			c.waiting = false
			c.syncViewport()
		}
		return c, nil

	case tea.KeyMsg:
		if c.input.Focused() {
			return c.updateInput(msg)
		}
		switch {
		case key.Matches(msg, keys.Enter):
			return c.focus()
		case key.Matches(msg, keys.Delete):
			if !c.waiting {
				c.history = nil
				c.fallback = map[int]bool{}
				c.syncViewport()
			}
			return c, nil
		}
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		return c, cmd
	}
	return c, nil
}

func (c chatModel) updateInput(msg tea.KeyMsg) (chatModel, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return c, tea.Quit
	case key.Matches(msg, keys.Back):
		c.input.Blur()
		return c, nil
	case key.Matches(msg, keys.Enter):
		return c.send()
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// send posts the typed question. Only one question is in flight at a time.
func (c chatModel) send() (chatModel, tea.Cmd) {
	text := strings.TrimSpace(c.input.Value())
	if text == "" || c.waiting {
		return c, nil
	}

	prior := append([]planner.Message(nil), c.history...)
	c.history = append(c.history, planner.Message{Role: planner.RoleUser, Content: text})
	c.input.Reset()
	c.waiting = true
	c.syncViewport()
	c.viewport.GotoBottom()

	coach := c.coach
	return c, tea.Batch(
		c.spinner.Tick,
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
			defer cancel()

			ans, err := coach.Chat(ctx, prior, text)
			if err != nil {
				return errStatus("Coach: %v", err)
			}
			return chatReplyMsg{answer: ans}
		},
	)
}

func (c *chatModel) syncViewport() {
	c.viewport.SetContent(c.transcript())
}

func (c chatModel) transcript() string {
	if len(c.history) == 0 && !c.waiting {
		return mutedStyle.Render("Ask the coach how to study, plan or stay motivated.")
	}

	wrap := lipgloss.NewStyle().Width(max(10, c.viewport.Width-2))
	var blocks []string
	for i, m := range c.history {
		label := chatUserStyle.Render("You")
		if m.Role == planner.RoleCoach {
			label = chatCoachStyle.Render("Coach")
			if c.fallback[i] {
				label += mutedStyle.Render(" (offline)")
			}
		}
		blocks = append(blocks, label+"\n"+wrap.Render(m.Content))
	}
	if c.waiting {
		blocks = append(blocks, c.spinner.View()+mutedStyle.Render(" Coach is thinking..."))
	}
	return strings.Join(blocks, "\n\n")
}

func (c chatModel) view() string {
	w := c.width - 4
	title := titleStyle.Render("Study Coach")

	hint := "enter: type  ↑/↓: scroll  d: clear"
	if c.input.Focused() {
		hint = "enter: send  esc: stop typing"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		c.viewport.View(),
		"",
		chatInputStyle.Width(max(10, w-6)).Render(c.input.View()),
		mutedStyle.Render("  "+hint),
	)
	return panelStyle.Width(w).Render(content)
}
