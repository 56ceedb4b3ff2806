package upload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractHeaders(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "trims whitespace", text: "Nome,CNPJ, Email \nx,y,z", want: []string{"Nome", "CNPJ", "Email"}},
		{name: "strips quotes", text: `"Nome","CNPJ"," Email "` + "\n1,2,3", want: []string{"Nome", "CNPJ", "Email"}},
		{name: "windows line endings", text: "Nome,CNPJ\r\n1,2\r\n", want: []string{"Nome", "CNPJ"}},
		{name: "single line without newline", text: "A,B", want: []string{"A", "B"}},
		{name: "empty text", text: "", want: []string{}},
		{name: "empty first line", text: "\nA,B", want: []string{}},
		{name: "quoted comma is split", text: `"Razao, Social",CNPJ`, want: []string{"Razao", "Social", "CNPJ"}},
		{name: "empty field kept", text: "A,,B", want: []string{"A", "", "B"}},
		{name: "byte order mark dropped", text: "\ufeffNome,CNPJ\n1,2\n", want: []string{"Nome", "CNPJ"}},
		{name: "byte order mark before quote", text: "\ufeff\"Nome\",CNPJ", want: []string{"Nome", "CNPJ"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractHeaders(tt.text))
		})
	}
}

func TestReadHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.csv")
	require.NoError(t, os.WriteFile(path, []byte("Código;x,UF\n"), 0644))

	headers, err := ReadHeaders(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Código;x", "UF"}, headers)

	_, err = ReadHeaders(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
