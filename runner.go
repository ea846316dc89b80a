package wayfarer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// Runner drives a run interactively over provided IO. It renders the
// effective screen and accepts simple commands, which makes journeys
// testable from a terminal before any client exists:
//
//	event <id> [element] [k=v ...]   fire a UI event
//	tool <name> [k=v ...]            simulate an agent tool call
//	handoff <agent>                  transfer to another agent
//	state                            dump merged run state
//	exit                             stop the loop
//
// A bare line is shorthand for "event <line>".
type Runner struct {
	Input  io.Reader
	Output io.Writer

	// Render overrides the default plain-text screen rendering when set.
	Render func(*domain.EffectiveScreen) string
}

// NewRunner creates a Runner. The caller sets Input/Output (e.g. os.Stdin
// and os.Stdout, or buffers in tests).
func NewRunner() *Runner {
	return &Runner{}
}

// Run starts a fresh run on the interpreter and loops until the run
// completes, the input hits EOF, or the user exits.
func (r *Runner) Run(ctx context.Context, itp *Interpreter) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lineReader := bufio.NewReader(r.Input)

	run, err := itp.StartRun(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}
	defer run.Close()

	fmt.Fprintf(r.Output, "--- %s (run %s) ---\n", itp.Journey().Name, run.ID())

	lastScreen := ""
	for {
		if done, err := run.Done(ctx); err != nil {
			return err
		} else if done {
			fmt.Fprintln(r.Output, "Run finished.")
			return nil
		}

		screen, err := run.Screen(ctx)
		if err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if screen != nil && screen.ID != lastScreen {
			r.printScreen(screen)
			lastScreen = screen.ID
		}

		fmt.Fprint(r.Output, "> ")
		text, err := lineReader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		fields := strings.Fields(strings.TrimSpace(text))
		if len(fields) == 0 {
			continue
		}

		var res *domain.DispatchResult
		switch fields[0] {
		case "exit", "quit":
			fmt.Fprintln(r.Output, "Bye!")
			return nil

		case "state":
			state, err := run.State(ctx)
			if err != nil {
				return err
			}
			for k, v := range state.Merged() {
				fmt.Fprintf(r.Output, "  %s = %v\n", k, v)
			}
			continue

		case "handoff":
			if len(fields) < 2 {
				fmt.Fprintln(r.Output, "usage: handoff <agent>")
				continue
			}
			res, err = run.Handoff(ctx, fields[1])

		case "tool":
			if len(fields) < 2 {
				fmt.Fprintln(r.Output, "usage: tool <name> [k=v ...]")
				continue
			}
			res, err = run.HandleToolCall(ctx, fields[1], parseArgs(fields[2:]))

		case "event":
			if len(fields) < 2 {
				fmt.Fprintln(r.Output, "usage: event <id> [element] [k=v ...]")
				continue
			}
			elementID := ""
			rest := fields[2:]
			if len(rest) > 0 && !strings.Contains(rest[0], "=") {
				elementID = rest[0]
				rest = rest[1:]
			}
			res, err = run.Dispatch(ctx, fields[1], elementID, parseArgs(rest))

		default:
			res, err = run.Dispatch(ctx, fields[0], "", nil)
		}

		if err != nil {
			return fmt.Errorf("dispatch error: %w", err)
		}
		if res != nil {
			for _, w := range res.Warnings {
				fmt.Fprintf(r.Output, "  warning [%s]: %s\n", w.Code, w.Message)
			}
			if !res.Matched {
				fmt.Fprintln(r.Output, "  (no matching event)")
			}
			if res.Signal.Completed || res.Signal.CompletionReason != "" {
				fmt.Fprintf(r.Output, "Run finished (completed=%v reason=%q)\n",
					res.Signal.Completed, res.Signal.CompletionReason)
				return nil
			}
		}
	}
}

func (r *Runner) printScreen(screen *domain.EffectiveScreen) {
	if r.Render != nil {
		fmt.Fprint(r.Output, r.Render(screen))
		return
	}
	if screen.Title != "" {
		fmt.Fprintf(r.Output, "\n== %s (%s) ==\n", screen.Title, screen.ID)
	} else {
		fmt.Fprintf(r.Output, "\n== %s ==\n", screen.ID)
	}
	for _, sec := range screen.Sections {
		for _, el := range sec.Elements {
			label := ""
			if v, ok := el.State["text"].(string); ok {
				label = " " + v
			}
			fmt.Fprintf(r.Output, "  [%s] %s%s\n", el.Type, el.ID, label)
		}
	}
}

func parseArgs(pairs []string) map[string]any {
	if len(pairs) == 0 {
		return nil
	}
	args := make(map[string]any, len(pairs))
	for _, p := range pairs {
		if k, v, ok := strings.Cut(p, "="); ok {
			args[k] = v
		}
	}
	return args
}
