package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/tidy-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptLedger(t *testing.T) {
	var out bytes.Buffer
	p := NewCLIPrompter(strings.NewReader("savings\n  Credit \n"), &out)

	got, err := p.PromptLedger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.LedgerCredit, got)
	assert.Contains(t, out.String(), "Ledger to process (checking|credit)")
	assert.Contains(t, out.String(), `unknown ledger "savings"`)
}

func TestPromptMonth(t *testing.T) {
	var out bytes.Buffer
	p := NewCLIPrompter(strings.NewReader("2024-2\n2024-02\n"), &out)

	got, err := p.PromptMonth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), got.Start)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), got.End)
	assert.Contains(t, out.String(), "YYYY-MM format")
}

func TestPrompt_ClosedInput(t *testing.T) {
	p := NewCLIPrompter(strings.NewReader(""), &bytes.Buffer{})

	_, err := p.PromptLedger(context.Background())
	require.ErrorIs(t, err, io.EOF)

	_, err = p.PromptMonth(context.Background())
	require.ErrorIs(t, err, io.EOF)
}

func TestPrompt_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewCLIPrompter(strings.NewReader("checking\n"), &bytes.Buffer{})

	_, err := p.PromptLedger(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
