package mapping

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(f *Form, keys ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = f.Update(k)
	}
	return cmd
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyBack  = tea.KeyMsg{Type: tea.KeyBackspace}
)

func TestForm_Navigation(t *testing.T) {
	f := NewForm(New([]string{"a", "b", "c"}, standard))

	press(f, keyDown, keyTab)
	assert.Equal(t, 2, f.Cursor())
	press(f, keyDown)
	assert.Equal(t, 0, f.Cursor(), "wraps to the first row")
	press(f, keyUp)
	assert.Equal(t, 2, f.Cursor())
}

func TestForm_CycleSkipsClaimedTargets(t *testing.T) {
	m := New([]string{"a", "b"}, standard)
	f := NewForm(m)

	press(f, keyRight)
	assert.Equal(t, "CNPJ", m.Target(0))

	press(f, keyDown, keyRight)
	assert.Equal(t, "Nome", m.Target(1), "CNPJ is held by row a")

	press(f, keyLeft)
	assert.Equal(t, "", m.Target(1), "left from Nome skips CNPJ back to unmapped")

	press(f, keyLeft)
	assert.Equal(t, "UF", m.Target(1), "wraps to the last option")

	press(f, keyBack)
	assert.Equal(t, "", m.Target(1))
}

func TestForm_ConfirmRequiresMapping(t *testing.T) {
	m := New([]string{"a", "b"}, standard)
	f := NewForm(m)

	cmd := press(f, keyEnter)
	assert.Nil(t, cmd)
	assert.Contains(t, f.View(), "Mapeie ao menos uma coluna")
	assert.Contains(t, f.View(), "Mapeamento incompleto")

	press(f, keyRight)
	assert.Contains(t, f.View(), "1 de 2 colunas mapeadas")
	assert.Contains(t, f.View(), "Pronto para continuar")

	cmd = press(f, keyEnter)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	mapped, cancelled := f.Result()
	assert.False(t, cancelled)
	assert.Equal(t, []ColumnMapping{{CSVColumn: "a", StandardColumn: "CNPJ"}}, mapped)
	assert.Empty(t, f.View())
}

func TestForm_Cancel(t *testing.T) {
	cancelled := false
	m := New([]string{"a"}, standard)
	m.OnCancel(func() { cancelled = true })
	f := NewForm(m)
	press(f, keyRight)

	cmd := press(f, keyEsc)

	require.NotNil(t, cmd)
	mapped, wasCancelled := f.Result()
	assert.True(t, wasCancelled)
	assert.Nil(t, mapped)
	assert.True(t, cancelled)
	assert.Equal(t, "CNPJ", m.Target(0))
}

func TestForm_IgnoresNonKeyMessages(t *testing.T) {
	f := NewForm(New([]string{"a"}, standard))

	_, cmd := f.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Nil(t, cmd)
	assert.Nil(t, f.Init())
	assert.Contains(t, f.View(), "a")
}
