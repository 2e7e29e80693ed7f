package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Notifier forwards engine alerts into a running Bubble Tea program in the
// order they were raised. Alerts raised before Attach are dropped.
type Notifier struct {
	mu    sync.Mutex
	send  func(tea.Msg)
	queue []notifyMsg
	wake  chan struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{wake: make(chan struct{}, 1)}
}

// Attach starts delivering alerts to p.
func (n *Notifier) Attach(p *tea.Program) {
	n.attach(p.Send)
}

func (n *Notifier) attach(send func(tea.Msg)) {
	n.mu.Lock()
	started := n.send != nil
	n.send = send
	n.mu.Unlock()

	if !started {
		go n.forward()
	}
}

// Notify satisfies timer.Notifier. It only queues the alert: Program.Send
// blocks until the event loop reads it, and skips are triggered from
// inside Update.
func (n *Notifier) Notify(title, body string) {
	n.mu.Lock()
	if n.send == nil {
		n.mu.Unlock()
		return
	}
	n.queue = append(n.queue, notifyMsg{title: title, body: body})
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// forward is the single goroutine that drains the queue.
func (n *Notifier) forward() {
	for range n.wake {
		for {
			n.mu.Lock()
			if len(n.queue) == 0 {
				n.mu.Unlock()
				break
			}
			msg := n.queue[0]
			n.queue = n.queue[1:]
			send := n.send
			n.mu.Unlock()

			send(msg)
		}
	}
}
