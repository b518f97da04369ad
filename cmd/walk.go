package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/panotour/internal/console"
	"github.com/ziadkadry99/panotour/internal/session"
	"github.com/ziadkadry99/panotour/internal/tour"
	"github.com/ziadkadry99/panotour/internal/viewer"
)

const walkHelp = `Commands:
  /go [hotspot]  follow a hotspot (pick from a list when omitted)
  /where         show the current scene
  /retry         resend the last failed assistant request
  /quit          leave the tour
Anything else is sent to the guide.`

var walkCmd = &cobra.Command{
	Use:   "walk <tour-id>",
	Short: "Walk a tour in the terminal and chat with the guide",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		out := cmd.OutOrStdout()
		term := viewer.NewTerminal(out)
		sess := session.New(args[0], session.Deps{
			Tours:     newTourRepository(cfg),
			Assistant: newAssistantClient(cfg),
			Viewer:    term,
			Presenter: console.NewPresenter(out),
		}, sessionOptions(cfg, &logger))
		defer sess.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := sess.Open(ctx); err != nil {
			return err
		}

		fmt.Fprintln(out, walkHelp)
		w := &walker{
			sess: sess,
			view: term,
			out:  out,
			pick: pickHotspot,
			wait: cfg.RequestTimeout() + time.Second,
		}
		for {
			prompt := promptui.Prompt{Label: "you"}
			line, err := prompt.Run()
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			quit, err := w.handle(ctx, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(walkCmd)
}

// walker turns typed lines into viewer navigation and chat turns.
type walker struct {
	sess *session.Session
	view *viewer.Terminal
	out  io.Writer
	pick func(hotspots []tour.ViewerHotSpot) (string, error)
	// wait bounds how long a command waits for the guide's answer.
	wait time.Duration
}

func (w *walker) handle(ctx context.Context, line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	cmd, arg, _ := strings.Cut(line, " ")

	switch cmd {
	case "":
		return false, nil
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintln(w.out, walkHelp)
		return false, nil
	case "/where":
		if scene := w.sess.Tour().Scene(w.sess.CurrentSceneID()); scene != nil {
			fmt.Fprintf(w.out, "You are in %s (%s)\n", scene.Title, w.sess.CurrentSceneID())
		}
		return false, nil
	case "/go":
		target := strings.TrimSpace(arg)
		if target == "" {
			hotspots := w.view.HotSpots()
			if len(hotspots) == 0 {
				return false, errors.New("this scene has no hotspots")
			}
			if target, err = w.pick(hotspots); err != nil {
				return false, err
			}
		}
		if err := w.view.Navigate(target); err != nil {
			return false, err
		}
	case "/retry":
		if err := w.sess.Retry(); err != nil {
			return false, err
		}
	default:
		if err := w.sess.SendUserMessage(line); err != nil {
			return false, err
		}
	}
	return false, w.settle(ctx)
}

// settle waits for pending answers so they print before the next prompt.
func (w *walker) settle(ctx context.Context) error {
	if w.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.wait)
		defer cancel()
	}
	if err := w.sess.Drain(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func pickHotspot(hotspots []tour.ViewerHotSpot) (string, error) {
	items := make([]string, len(hotspots))
	for i, h := range hotspots {
		items[i] = fmt.Sprintf("%s (%s)", h.Text, h.SceneID)
	}
	sel := promptui.Select{
		Label: "Follow hotspot",
		Items: items,
	}
	idx, _, err := sel.Run()
	if err != nil {
		return "", fmt.Errorf("hotspot selection: %w", err)
	}
	return hotspots[idx].SceneID, nil
}
