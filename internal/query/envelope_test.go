package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_MarshalDirect(t *testing.T) {
	env := Envelope{
		Data:    DisplayResult{"hbarPrice": "$0.05000"},
		RawData: json.RawMessage(`{"ecosystem_metric":[]}`),
		Source:  SourceHgraph,
	}

	out, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"data": {"hbarPrice": "$0.05000"},
		"rawData": {"ecosystem_metric": []},
		"source": "Hgraph GraphQL API"
	}`, string(out))
}

func TestEnvelope_MarshalAssistant(t *testing.T) {
	env := &Envelope{
		TextResponses: []string{"HBAR is trading at $0.05"},
		FullResponse:  json.RawMessage(`[{"type":"text","text":"HBAR is trading at $0.05"}]`),
	}

	out, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"toolResults": "",
		"textResponses": ["HBAR is trading at $0.05"],
		"fullResponse": [{"type":"text","text":"HBAR is trading at $0.05"}]
	}`, string(out))
}

func TestEnvelope_MarshalErrorOnly(t *testing.T) {
	env := Envelope{
		Data:  DisplayResult{"ignored": true},
		Error: "Method not allowed",
	}

	out, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error": "Method not allowed"}`, string(out))
}

func TestEnvelope_RoundTrip(t *testing.T) {
	in := Envelope{
		Data:    DisplayResult{"tps": json.Number("12")},
		RawData: json.RawMessage(`{"tps":[{"total":12}]}`),
		Source:  SourceHgraph,
	}

	out, err := json.Marshal(in)
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, in.Source, decoded.Source)
	assert.Equal(t, []string{"tps"}, decoded.Data.Fields())
	assert.False(t, decoded.IsAssistant())
}
