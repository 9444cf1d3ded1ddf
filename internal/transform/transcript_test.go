package transform

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTranscript = `speaker,text
alice,hello there bob
bob,hi
alice,how are you doing today
bob,fine thanks
`

func TestTranscript_Apply(t *testing.T) {
	t.Parallel()

	out, err := Transcript{}.Apply(context.Background(), "meeting.csv", strings.NewReader(sampleTranscript))
	require.NoError(t, err)

	assert.Equal(t, "meeting_report.pdf", out.Name)

	pdf, err := io.ReadAll(out.Data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	var summary struct {
		Filename   string `json:"filename"`
		Utterances int    `json:"utterances"`
		Words      int    `json:"words"`
		Speakers   []struct {
			Speaker      string  `json:"speaker"`
			Utterances   int     `json:"utterances"`
			Words        int     `json:"words"`
			AverageWords float64 `json:"average_words"`
		} `json:"speakers"`
	}
	require.NoError(t, json.Unmarshal(out.Summary, &summary))

	assert.Equal(t, "meeting.csv", summary.Filename)
	assert.Equal(t, 4, summary.Utterances)
	assert.Equal(t, 11, summary.Words)

	require.Len(t, summary.Speakers, 2)
	assert.Equal(t, "alice", summary.Speakers[0].Speaker)
	assert.Equal(t, 8, summary.Speakers[0].Words)
	assert.Equal(t, 4.0, summary.Speakers[0].AverageWords)
	assert.Equal(t, "bob", summary.Speakers[1].Speaker)
	assert.Equal(t, 3, summary.Speakers[1].Words)
}

func TestTranscript_Apply_MissingSpeaker(t *testing.T) {
	t.Parallel()

	_, err := Transcript{}.Apply(context.Background(), "bad.csv", strings.NewReader("speaker,text\n,orphan line\n"))
	assert.Error(t, err)
}

func TestTranscript_Apply_EmptyTranscript(t *testing.T) {
	t.Parallel()

	out, err := Transcript{}.Apply(context.Background(), "empty.csv", strings.NewReader("speaker,text\n"))
	require.NoError(t, err)

	var summary struct {
		Utterances int `json:"utterances"`
	}
	require.NoError(t, json.Unmarshal(out.Summary, &summary))
	assert.Zero(t, summary.Utterances)
}

func TestCopy_Apply(t *testing.T) {
	t.Parallel()

	out, err := Copy{}.Apply(context.Background(), "sheet.xlsx", strings.NewReader("raw-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "sheet.xlsx", out.Name)

	data, err := io.ReadAll(out.Data)
	require.NoError(t, err)
	assert.Equal(t, "raw-bytes", string(data))
}

func TestForFilename(t *testing.T) {
	t.Parallel()

	tr, err := ForFilename("a.CSV")
	require.NoError(t, err)
	assert.IsType(t, Transcript{}, tr)

	tr, err = ForFilename("b.xlsx")
	require.NoError(t, err)
	assert.IsType(t, Copy{}, tr)

	_, err = ForFilename("c.pdf")
	assert.Error(t, err)
}
