package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Veraticus/tidy-ledger/internal/model"
)

// PromptLedger asks for a ledger until the answer parses.
func (p *Prompter) PromptLedger(ctx context.Context) (model.Ledger, error) {
	for {
		line, err := p.ask(ctx, "Ledger to process (checking|credit)")
		if err != nil {
			return "", err
		}
		l, err := model.ParseLedger(line)
		if err == nil {
			return l, nil
		}
		p.println(FormatWarning(err.Error()))
	}
}

// PromptMonth asks for a month until the answer parses.
func (p *Prompter) PromptMonth(ctx context.Context) (model.MonthWindow, error) {
	for {
		line, err := p.ask(ctx, "Month to process (YYYY-MM)")
		if err != nil {
			return model.MonthWindow{}, err
		}
		w, err := model.ParseMonth(line)
		if err == nil {
			return w, nil
		}
		p.println(FormatWarning(err.Error()))
	}
}

func (p *Prompter) ask(ctx context.Context, prompt string) (string, error) {
	p.print(FormatPrompt(prompt))
	line, err := p.reader.ReadLine(ctx)
	switch {
	case errors.Is(err, ErrInputCancelled):
		return "", ctx.Err()
	case errors.Is(err, io.EOF):
		return "", fmt.Errorf("no answer for %q: %w", prompt, err)
	case err != nil:
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return line, nil
}
