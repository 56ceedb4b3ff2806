package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var standard = []string{"CNPJ", "Nome", "Email", "Email", "UF"}

func TestNew(t *testing.T) {
	m := New([]string{"cnpj", "razao", "mail"}, standard)

	assert.Equal(t, []string{"CNPJ", "Nome", "Email", "UF"}, m.Standard())
	assert.Equal(t, []ColumnMapping{
		{CSVColumn: "cnpj"},
		{CSVColumn: "razao"},
		{CSVColumn: "mail"},
	}, m.Rows())
	assert.False(t, m.CanConfirm())
	assert.Zero(t, m.MappedCount())
}

func TestMapper_Set(t *testing.T) {
	m := New([]string{"cnpj", "razao", "mail"}, standard)

	require.NoError(t, m.Set(0, "CNPJ"))
	require.NoError(t, m.Set(0, "CNPJ"), "holder may re-select its own target")

	err := m.Set(1, "CNPJ")
	assert.ErrorIs(t, err, ErrTargetClaimed)
	assert.Equal(t, "", m.Target(1))

	assert.ErrorIs(t, m.Set(1, "Telefone"), ErrUnknownTarget)
	assert.ErrorIs(t, m.Set(3, "Nome"), ErrRowOutOfRange)
	assert.ErrorIs(t, m.Set(-1, "Nome"), ErrRowOutOfRange)

	// Releasing a target frees it for other rows.
	require.NoError(t, m.Set(0, ""))
	require.NoError(t, m.Set(1, "CNPJ"))
	assert.Equal(t, "CNPJ", m.Target(1))
}

func TestMapper_SetByHeader(t *testing.T) {
	m := New([]string{"cnpj", "mail"}, standard)

	require.NoError(t, m.SetByHeader("mail", "Email"))
	assert.Equal(t, "Email", m.Target(1))
	assert.ErrorIs(t, m.SetByHeader("nope", "Nome"), ErrRowOutOfRange)
}

func TestMapper_Options(t *testing.T) {
	m := New([]string{"cnpj", "razao"}, standard)
	require.NoError(t, m.Set(0, "CNPJ"))

	disabled := func(opts []Option) []string {
		var out []string
		for _, o := range opts {
			if o.Disabled {
				out = append(out, o.Name)
			}
		}
		return out
	}

	assert.Empty(t, disabled(m.Options(0)), "a row never sees its own target disabled")
	assert.Equal(t, []string{"CNPJ"}, disabled(m.Options(1)))
	assert.Len(t, m.Options(1), 4)
}

func TestMapper_NoTargetClaimedTwice(t *testing.T) {
	headers := []string{"a", "b", "c", "d"}
	m := New(headers, standard)
	targets := m.Standard()

	// Every row tries every target in turn; at no point may two rows share one.
	for row := range headers {
		for _, target := range targets {
			_ = m.Set(row, target)
			seen := map[string]int{}
			for _, r := range m.Rows() {
				if r.StandardColumn != "" {
					seen[r.StandardColumn]++
				}
			}
			for name, n := range seen {
				assert.Equal(t, 1, n, "target %s claimed %d times", name, n)
			}
		}
	}
}

func TestMapper_Confirm(t *testing.T) {
	var got []ColumnMapping
	m := New([]string{"cnpj", "razao", "mail"}, standard)
	m.OnComplete(func(mapped []ColumnMapping) { got = mapped })

	_, err := m.Confirm()
	assert.ErrorIs(t, err, ErrNothingMapped)
	assert.Nil(t, got)

	require.NoError(t, m.Set(2, "Email"))
	require.NoError(t, m.Set(0, "CNPJ"))

	mapped, err := m.Confirm()
	require.NoError(t, err)
	want := []ColumnMapping{
		{CSVColumn: "cnpj", StandardColumn: "CNPJ"},
		{CSVColumn: "mail", StandardColumn: "Email"},
	}
	assert.Equal(t, want, mapped)
	assert.Equal(t, want, got)
}

func TestMapper_Cancel(t *testing.T) {
	cancelled := 0
	m := New([]string{"cnpj"}, standard)
	m.OnCancel(func() { cancelled++ })
	require.NoError(t, m.Set(0, "CNPJ"))

	m.Cancel()

	assert.Equal(t, 1, cancelled)
	assert.Equal(t, "CNPJ", m.Target(0), "cancel leaves state untouched")
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Dedupe([]string{"a", "", "b", "a"}))
	assert.Equal(t, []string{}, Dedupe(nil))
}
