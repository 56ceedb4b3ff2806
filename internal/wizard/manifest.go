package wizard

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// A step manifest lists the upload sequence as CSV, one step per row in
// upload order:
//
//	id,title,description,endpoint
//	pessoa-juridica,Pessoa Jurídica,Upload do CSV de pessoas jurídicas,PessoaJuridica-csv
//	operacoes,Operações,Upload do CSV de operações,Operacoes-csv
//
// Column order is free; id and endpoint are required.

// requiredColumns are the columns that must be present in the manifest header.
var requiredColumns = []string{"id", "endpoint"}

// ReadStepsFromFile reads and parses a step manifest CSV file.
func ReadStepsFromFile(path string) ([]UploadStep, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open step manifest: %w", err)
	}
	defer f.Close()

	return readSteps(f)
}

// ReadStepsFromString parses a step manifest from a CSV string.
func ReadStepsFromString(data string) ([]UploadStep, error) {
	return readSteps(strings.NewReader(data))
}

func readSteps(r io.Reader) ([]UploadStep, error) {
	reader := csv.NewReader(skipBOM(r))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read step manifest header: %w", err)
	}

	colIndex := buildColumnIndex(header)
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("step manifest missing required column: %s", col)
		}
	}

	var steps []UploadStep
	lineNum := 1
	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read step manifest line %d: %w", lineNum, err)
		}

		step := UploadStep{
			ID:          getField(record, colIndex, "id"),
			Title:       getField(record, colIndex, "title"),
			Description: getField(record, colIndex, "description"),
			Endpoint:    getField(record, colIndex, "endpoint"),
		}
		if step.Title == "" {
			step.Title = step.ID
		}
		steps = append(steps, step)
	}

	if err := ValidateSteps(steps); err != nil {
		return nil, fmt.Errorf("invalid step manifest: %w", err)
	}
	return steps, nil
}

// skipBOM drops a leading UTF-8 byte order mark, as written by spreadsheet
// exports.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && string(b) == "\ufeff" {
		_, _ = br.Discard(3)
	}
	return br
}

func buildColumnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(strings.ToLower(col))] = i
	}
	return index
}

func getField(record []string, colIndex map[string]int, column string) string {
	idx, ok := colIndex[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
