package query

import (
	"encoding/json"
	"sort"
)

// SourceHgraph names the upstream of the direct variant
const SourceHgraph = "Hgraph GraphQL API"

// DisplayResult maps named display fields to primitive values
type DisplayResult map[string]any

// Fields returns the result's field names in sorted order
func (d DisplayResult) Fields() []string {
	fields := make([]string, 0, len(d))
	for k := range d {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// Envelope is the response body shared by both proxy variants.
// The direct variant fills Data, RawData and Source; the AI-mediated variant
// fills ToolResults, TextResponses and FullResponse; failures fill Error only.
type Envelope struct {
	Data          DisplayResult   `json:"data,omitempty"`
	RawData       json.RawMessage `json:"rawData,omitempty"`
	Source        string          `json:"source,omitempty"`
	ToolResults   string          `json:"toolResults,omitempty"`
	TextResponses []string        `json:"textResponses,omitempty"`
	FullResponse  json.RawMessage `json:"fullResponse,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// ErrorEnvelope builds a failure envelope
func ErrorEnvelope(message string) *Envelope {
	return &Envelope{Error: message}
}

// IsAssistant reports whether the envelope came from the AI-mediated variant
func (e Envelope) IsAssistant() bool {
	return e.FullResponse != nil || e.TextResponses != nil
}

// MarshalJSON writes exactly one of the three wire shapes
func (e Envelope) MarshalJSON() ([]byte, error) {
	switch {
	case e.Error != "":
		return json.Marshal(struct {
			Error string `json:"error"`
		}{e.Error})

	case e.IsAssistant():
		texts := e.TextResponses
		if texts == nil {
			texts = []string{}
		}
		full := e.FullResponse
		if full == nil {
			full = json.RawMessage("[]")
		}
		return json.Marshal(struct {
			ToolResults   string          `json:"toolResults"`
			TextResponses []string        `json:"textResponses"`
			FullResponse  json.RawMessage `json:"fullResponse"`
		}{e.ToolResults, texts, full})

	default:
		data := e.Data
		if data == nil {
			data = DisplayResult{}
		}
		raw := e.RawData
		if raw == nil {
			raw = json.RawMessage("null")
		}
		return json.Marshal(struct {
			Data    DisplayResult   `json:"data"`
			RawData json.RawMessage `json:"rawData"`
			Source  string          `json:"source"`
		}{data, raw, e.Source})
	}
}
