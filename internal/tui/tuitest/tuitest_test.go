package tuitest

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type counter struct {
	keys []string
}

func (c counter) Init() tea.Cmd { return nil }

func (c counter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		c.keys = append(c.keys, k.String())
		if k.Type == tea.KeyEnter {
			return c, tea.Quit
		}
	}
	return c, nil
}

func (c counter) View() string { return "" }

func TestDrive(t *testing.T) {
	msgs := append(Type("ab"), Key(tea.KeyEnter))
	got, cmd := Drive(t, counter{}, msgs...)

	assert.Equal(t, []string{"a", "b", "enter"}, got.keys)
	assert.True(t, IsQuit(cmd))
	assert.False(t, IsQuit(nil))
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "Groceries", StripANSI("\x1b[1;38;5;86mGroceries\x1b[0m"))
}

func TestContainsInOrder(t *testing.T) {
	assert.True(t, ContainsInOrder("Transaction 1 #3 Groceries", "Transaction", "#3", "Groceries"))
	assert.False(t, ContainsInOrder("Groceries Transaction", "Transaction", "Groceries"))
}
