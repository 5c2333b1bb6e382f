package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Veraticus/tidy-ledger/internal/model"
	"github.com/Veraticus/tidy-ledger/internal/selector"
	"github.com/Veraticus/tidy-ledger/internal/session"
	"github.com/Veraticus/tidy-ledger/internal/taxonomy"
	"github.com/schollz/progressbar/v3"
)

// Prompter implements session.Prompter over plain line input. Typed text
// refines the query, an empty line assigns the highlighted candidate, "#n"
// (or a bare n within the list) highlights that candidate, "s" skips and
// "q" quits.
type Prompter struct {
	writer      io.Writer
	reader      *NonBlockingReader
	progressBar *progressbar.ProgressBar
	limit       int
	presented   int
	currentID   int64
}

// Ensure we implement the interface.
var _ session.Prompter = (*Prompter)(nil)

// NewCLIPrompter creates a new CLI prompter with the given reader and writer.
func NewCLIPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	p := &Prompter{
		reader: NewNonBlockingReader(reader),
		writer: writer,
		limit:  selector.DefaultLimit,
	}
	p.initProgressBar()
	return p
}

// SetLimit caps how many candidates are listed.
func (p *Prompter) SetLimit(limit int) {
	if limit > 0 {
		p.limit = limit
	}
}

// Presented returns how many distinct transactions have been shown.
func (p *Prompter) Presented() int {
	return p.presented
}

// Resolve shows txn and reads commands until the operator decides.
func (p *Prompter) Resolve(ctx context.Context, txn model.Transaction, index *taxonomy.Index) (model.Decision, error) {
	if err := ctx.Err(); err != nil {
		return model.Decision{}, err
	}

	// A failed assignment asks about the same transaction again.
	if p.presented == 0 || txn.ID != p.currentID {
		p.currentID = txn.ID
		p.updateProgress()
	}
	p.println(RenderBox(fmt.Sprintf("Transaction %d", p.presented), formatTransaction(txn)))
	p.println(SubtleStyle.Render("controls: <enter>=assign  <text>=filter  #<n>=highlight  s=skip  q=quit"))

	sel := selector.New(index, txn, p.limit)
	for {
		p.printCandidates(sel)

		p.print(FormatPrompt("category"))
		line, err := p.reader.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, ErrInputCancelled) {
				return model.Decision{}, ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				slog.Debug("Input closed, ending session")
				return model.QuitDecision(), nil
			}
			return model.Decision{}, fmt.Errorf("failed to read input: %w", err)
		}

		p.handleLine(sel, line)
		if d, ok := sel.Decision(); ok {
			return d, nil
		}
	}
}

func (p *Prompter) handleLine(sel *selector.Selector, line string) {
	switch strings.ToLower(line) {
	case "":
		if err := sel.Confirm(); errors.Is(err, selector.ErrNoCandidates) {
			p.println(FormatWarning("No category matches; refine the query, or use s/q."))
		}
		return
	case "s":
		sel.Skip()
		return
	case "q":
		sel.Quit()
		return
	}

	if rest, ok := strings.CutPrefix(line, "#"); ok {
		if n, err := strconv.Atoi(rest); err == nil {
			if !sel.Select(n) {
				p.println(FormatWarning(fmt.Sprintf("No candidate %d; pick #1-#%d.", n, len(sel.Matches()))))
			}
			return
		}
	} else if n, err := strconv.Atoi(line); err == nil && sel.Select(n) {
		return
	}
	sel.SetQuery(line)
}

// ConfirmRetry asks whether the failed remote call should be attempted again.
func (p *Prompter) ConfirmRetry(ctx context.Context, err error) (bool, error) {
	p.println(FormatError(err.Error()))
	for {
		p.print(FormatPrompt("Retry? [y/n]"))
		line, readErr := p.reader.ReadLine(ctx)
		if readErr != nil {
			if errors.Is(readErr, ErrInputCancelled) {
				return false, ctx.Err()
			}
			if errors.Is(readErr, io.EOF) {
				return false, nil
			}
			return false, fmt.Errorf("failed to read input: %w", readErr)
		}

		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no", "q":
			return false, nil
		}
	}
}

// Notify prints a status line styled for its level.
func (p *Prompter) Notify(level session.Level, msg string) {
	switch level {
	case session.LevelSuccess:
		p.println(FormatSuccess(msg))
	case session.LevelWarning:
		p.println(FormatWarning(msg))
	default:
		p.println(FormatInfo(msg))
	}
}

func (p *Prompter) printCandidates(sel *selector.Selector) {
	matches := sel.Matches()
	if len(matches) == 0 {
		p.println(SubtleStyle.Render(fmt.Sprintf("  no categories match %q", sel.Query())))
		return
	}

	p.println(SubtleStyle.Render(fmt.Sprintf("  matches for %q:", sel.Query())))
	for i, m := range matches {
		line := fmt.Sprintf("%2d. %s", i+1, m.Label())
		if i == sel.Highlighted() {
			p.println(HighlightStyle.Render(PointerIcon + " " + line))
			continue
		}
		p.println("  " + line)
	}
}

func formatTransaction(txn model.Transaction) string {
	rows := []string{
		LabelStyle.Render("date") + txn.Date.Format(model.DateLayout),
		LabelStyle.Render("ledger") + string(txn.Ledger),
		LabelStyle.Render("amount") + txn.Amount.StringFixed(2),
		LabelStyle.Render("description") + txn.Description,
		LabelStyle.Render("id") + strconv.FormatInt(txn.ID, 10),
	}
	return strings.Join(rows, "\n")
}

func (p *Prompter) initProgressBar() {
	p.progressBar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionSetDescription("Reviewed"),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		// Render only on Add so the bar never writes between prompts.
		progressbar.OptionSetSpinnerChangeInterval(0),
		progressbar.OptionSetElapsedTime(false),
	)
}

func (p *Prompter) updateProgress() {
	p.presented++
	if p.progressBar != nil {
		if err := p.progressBar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
		p.println("")
	}
}

func (p *Prompter) print(s string) {
	if _, err := fmt.Fprint(p.writer, s); err != nil {
		slog.Warn("Failed to write prompt", "error", err)
	}
}

func (p *Prompter) println(s string) {
	if _, err := fmt.Fprintln(p.writer, s); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}
