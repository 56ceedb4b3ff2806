package server

import (
	"csvwizard/internal/mapping"
	"csvwizard/internal/upload"
	"csvwizard/internal/wizard"
)

// StepResponse is one step with its derived status and uploader state.
type StepResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Endpoint    string `json:"endpoint"`
	Status      string `json:"status"`
	Completed   bool   `json:"completed"`
	Current     bool   `json:"current"`
	Locked      bool   `json:"locked"`
	FileName    string `json:"fileName,omitempty"`
	FileSize    int64  `json:"fileSize,omitempty"`
	Uploading   bool   `json:"uploading"`
}

// StateResponse is the whole session state.
type StateResponse struct {
	Steps                []StepResponse `json:"steps"`
	Errors               []string       `json:"errors"`
	ConsolidationEnabled bool           `json:"consolidationEnabled"`
}

// MappingRequest asks for a mapping preview.
type MappingRequest struct {
	Headers     []string                `json:"headers"`
	StepID      string                  `json:"stepId"`
	Assignments []mapping.ColumnMapping `json:"assignments"`
}

// OptionResponse lists the targets offered to one header.
type OptionResponse struct {
	CSVColumn string           `json:"csvColumn"`
	Options   []mapping.Option `json:"options"`
}

// MappingResponse is the outcome of a mapping preview.
type MappingResponse struct {
	Mapped  []mapping.ColumnMapping `json:"mapped"`
	Summary string                  `json:"summary"`
	Ready   bool                    `json:"ready"`
	Rows    []OptionResponse        `json:"rows"`
}

func stepResponses(views []wizard.StepView, cards []upload.Card) []StepResponse {
	out := make([]StepResponse, len(views))
	for i, v := range views {
		out[i] = StepResponse{
			ID:          v.ID,
			Title:       v.Title,
			Description: v.Description,
			Endpoint:    v.Endpoint,
			Status:      string(v.Status()),
			Completed:   v.Completed,
			Current:     v.Current,
			Locked:      v.Locked,
		}
		if i < len(cards) {
			out[i].FileName = cards[i].FileName
			out[i].FileSize = cards[i].FileSize
			out[i].Uploading = cards[i].InFlight
		}
	}
	return out
}
