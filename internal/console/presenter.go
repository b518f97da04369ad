package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ziadkadry99/panotour/internal/session"
)

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	thinkingStyle  = lipgloss.NewStyle().Faint(true).Italic(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	announceStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("13")).
			Padding(0, 1)
)

// Presenter renders session output to a terminal.
type Presenter struct {
	mu       sync.Mutex
	out      io.Writer
	thinking bool
	visible  string
	timer    *time.Timer
	gen      int
}

// NewPresenter creates a presenter writing to out.
func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

func (p *Presenter) SetThinking(thinking bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if thinking && !p.thinking {
		fmt.Fprintln(p.out, thinkingStyle.Render("guide is thinking..."))
	}
	p.thinking = thinking
}

// Announce prints text in a box and keeps it as the visible announcement
// until d elapses or another announcement replaces it.
func (p *Presenter) Announce(text string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
	}
	p.gen++
	gen := p.gen
	p.visible = text
	fmt.Fprintln(p.out, announceStyle.Render(text))

	p.timer = time.AfterFunc(d, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.gen == gen {
			p.visible = ""
		}
	})
}

func (p *Presenter) AppendChat(msg session.ChatMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch msg.Sender {
	case session.SenderUser:
		fmt.Fprintf(p.out, "%s %s\n", userStyle.Render("you:"), msg.Text)
	default:
		fmt.Fprintf(p.out, "%s %s\n", assistantStyle.Render("guide:"), msg.Text)
	}
}

func (p *Presenter) ShowError(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, errorStyle.Render("! "+msg))
}

// Announcement returns the announcement currently on screen, or "".
func (p *Presenter) Announcement() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Thinking reports whether the thinking indicator is on.
func (p *Presenter) Thinking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.thinking
}
