package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		mode Mode
		want Mode
	}{
		{"", ModeMarkdown},
		{ModeAuto, ModeMarkdown},
		{ModeText, ModeText},
		{ModeMarkdown, ModeMarkdown},
		{ModeJSON, ModeJSON},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			// A buffer is never a terminal, so auto resolves to markdown.
			r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, tt.mode)
			assert.False(t, r.IsTTY())
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_PlainWhenPiped(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeText)

	r.Success("Data processed and saved to out.json")
	r.Header(1, "Inputs")
	r.KeyValue("Engine", "native")
	r.StatusLine("election", "success", "3 columns")
	r.Muted("done")
	r.Warning("careful")

	assert.Equal(t,
		"Data processed and saved to out.json\nInputs\nEngine: native\n  ✓ election 3 columns\ndone\n",
		out.String(), "no escape sequences when not a terminal")
	assert.Equal(t, "warning: careful\n", errOut.String())
}

func TestRenderer_Markdown(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, ModeMarkdown)

	r.Header(2, "Join")
	r.KeyValue("Records", 3)

	assert.Equal(t, "## Join\n\n- **Records**: 3\n", out.String())
}

func TestRenderer_JSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, ModeJSON)

	require.NoError(t, r.JSON(RunOutput{Message: "ok", Engine: "native", Records: 2}))

	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("\n")), "single line")
	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "ok", got["message"])
	assert.EqualValues(t, 2, got["records"])
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title\n", FormatHeader(1, "Title"))
	assert.Equal(t, "### Deep\n", FormatHeader(3, "Deep"))
	assert.Equal(t, "# Clamped\n", FormatHeader(0, "Clamped"))
	assert.Equal(t, "- **Key**: value", FormatKeyValue("Key", "value"))
}
