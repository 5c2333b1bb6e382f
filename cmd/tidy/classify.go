package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/tidy-ledger/internal/applier"
	"github.com/Veraticus/tidy-ledger/internal/certs"
	"github.com/Veraticus/tidy-ledger/internal/cli"
	"github.com/Veraticus/tidy-ledger/internal/common"
	"github.com/Veraticus/tidy-ledger/internal/config"
	"github.com/Veraticus/tidy-ledger/internal/ledger"
	"github.com/Veraticus/tidy-ledger/internal/model"
	"github.com/Veraticus/tidy-ledger/internal/session"
	"github.com/Veraticus/tidy-ledger/internal/tui"
	"github.com/Veraticus/tidy-ledger/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func classifyCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Categorize the unclassified transactions of one ledger month",
		Long: `Walk the unclassified transactions of a ledger month, newest first, and
assign each one a category from the remote taxonomy.

Ledger and month are asked for interactively when not given as flags.

Examples:
  tidy classify --ledger checking --month 2024-02
  tidy classify --plain --page-size 50
  tidy classify --dry-run --no-curl`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClassify(cmd, v)
		},
	}

	// Flags
	cmd.Flags().StringP("ledger", "l", "", "Ledger to process (checking or credit)")
	cmd.Flags().StringP("month", "m", "", "Month to process (format: 2024-01)")
	cmd.Flags().Int("page-size", 0, "Transactions fetched per request (1-5000, default 200)")
	cmd.Flags().Bool("plain", false, "Use line prompts instead of the interactive picker")
	cmd.Flags().Bool("dry-run", false, "Show category assignments without sending them")
	cmd.Flags().String("theme", "", "Picker theme (default, mocha)")

	// Bind to viper (errors are rare and can be ignored in practice)
	_ = v.BindPFlag("classify.ledger", cmd.Flags().Lookup("ledger"))
	_ = v.BindPFlag("classify.month", cmd.Flags().Lookup("month"))
	_ = v.BindPFlag("classify.page_size", cmd.Flags().Lookup("page-size"))
	_ = v.BindPFlag("classify.plain", cmd.Flags().Lookup("plain"))
	_ = v.BindPFlag("classify.dry_run", cmd.Flags().Lookup("dry-run"))
	_ = v.BindPFlag("classify.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func runClassify(cmd *cobra.Command, v *viper.Viper) error {
	settings, err := config.Load(v)
	if err != nil {
		return common.NewUserError("invalid configuration", err)
	}

	out := cmd.OutOrStdout()
	plain := cli.NewCLIPrompter(cmd.InOrStdin(), out)

	interrupts := cli.NewInterruptHandler(out)
	ctx := interrupts.HandleInterrupts(cmd.Context(), settings.Classify.DryRun)
	defer interrupts.Stop()

	l, window, err := resolveTarget(ctx, settings, plain)
	if err != nil {
		if interrupts.WasInterrupted() {
			return nil
		}
		return err
	}

	var prompter session.Prompter = plain
	if !settings.Classify.Plain {
		theme, ok := themes.ByName(settings.Classify.Theme)
		if !ok {
			return common.NewUserError(fmt.Sprintf("unknown theme %q (use default or mocha)", settings.Classify.Theme), common.ErrInvalidConfig)
		}
		prompter = tui.New(tui.WithTheme(theme), tui.WithIO(cmd.InOrStdin(), out))
	}

	client, err := newLedgerClient(settings, out)
	if err != nil {
		return err
	}

	var applyOpts []applier.Option
	if settings.Classify.DryRun {
		applyOpts = append(applyOpts, applier.WithDryRun(out))
	}

	controller, err := session.New(session.Config{
		Taxonomy: client,
		Pages:    client,
		Applier:  applier.New(client, applyOpts...),
		Prompter: prompter,
		Ledger:   l,
		Window:   window,
		PageSize: settings.Classify.PageSize,
	})
	if err != nil {
		common.LogError(err, "Failed to set up session", common.Fields{"ledger": l, "month": window.Label()})
		return fmt.Errorf("failed to set up session: %w", err)
	}

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Processing ledger=%s month=%s (%s)", l, window.Label(), window)))
	slog.Info("Starting classification",
		"ledger", l,
		"month", window.Label(),
		"base_url", settings.Ledger.BaseURL,
		"page_size", settings.Classify.PageSize,
		"dry_run", settings.Classify.DryRun)

	stats, runErr := controller.Run(ctx)
	state := controller.State()
	printSummary(out, stats, state)

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) && interrupts.WasInterrupted() {
			return nil
		}
		common.LogError(runErr, "Classification failed", common.Fields{
			"ledger": l,
			"month":  window.Label(),
			"seen":   stats.Seen,
			"offset": state.Offset,
		})
		return fmt.Errorf("classification failed: %w", runErr)
	}
	return nil
}

// resolveTarget takes ledger and month from settings, asking for whichever is missing.
func resolveTarget(ctx context.Context, settings *config.Settings, p *cli.Prompter) (model.Ledger, model.MonthWindow, error) {
	var (
		l      model.Ledger
		window model.MonthWindow
		err    error
	)

	if settings.Classify.Ledger != "" {
		if l, err = model.ParseLedger(settings.Classify.Ledger); err != nil {
			return "", model.MonthWindow{}, common.NewUserError("invalid --ledger", err)
		}
	} else if l, err = p.PromptLedger(ctx); err != nil {
		return "", model.MonthWindow{}, missingTarget("ledger", err)
	}

	if settings.Classify.Month != "" {
		if window, err = model.ParseMonth(settings.Classify.Month); err != nil {
			return "", model.MonthWindow{}, common.NewUserError("invalid --month", err)
		}
	} else if window, err = p.PromptMonth(ctx); err != nil {
		return "", model.MonthWindow{}, missingTarget("month", err)
	}

	return l, window, nil
}

// missingTarget reports a setting that could not be asked for because input closed.
func missingTarget(name string, err error) error {
	if !errors.Is(err, io.EOF) {
		return err
	}
	return common.NewUserError(
		fmt.Sprintf("--%s is required when input is not interactive", name),
		fmt.Errorf("%w: classify.%s: %w", common.ErrMissingConfig, name, err),
	)
}

func newLedgerClient(settings *config.Settings, out io.Writer) (*ledger.Client, error) {
	opts := []ledger.ClientOption{
		ledger.WithTimeout(settings.Ledger.Timeout),
	}
	if settings.Ledger.CAFile != "" {
		tlsConfig, err := certs.ClientConfig(settings.Ledger.CAFile)
		if err != nil {
			return nil, common.NewUserError("cannot use ledger.ca_file", err)
		}
		opts = append(opts, ledger.WithTLSConfig(tlsConfig))
	}
	if settings.Ledger.Token != "" {
		opts = append(opts, ledger.WithToken(settings.Ledger.Token))
	}
	if !settings.Classify.NoCurl {
		opts = append(opts, ledger.WithAudit(out))
	}
	return ledger.NewClient(settings.Ledger.BaseURL, opts...), nil
}

func printSummary(out io.Writer, stats model.Stats, state session.State) {
	status := "stopped"
	switch {
	case state.Done:
		status = "month complete"
	case state.Quit:
		status = "quit"
	}

	rows := []string{
		fmt.Sprintf("%-10s %d", "Seen", stats.Seen),
		fmt.Sprintf("%-10s %d", "Applied", stats.Applied),
		fmt.Sprintf("%-10s %d", "Skipped", stats.Skipped),
		fmt.Sprintf("%-10s %d", "Rejected", stats.Rejected),
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderBox(fmt.Sprintf("Summary (%s)", status), strings.Join(rows, "\n")))
}
