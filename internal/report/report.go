package report

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// SpeakerStats aggregates one speaker's share of a transcript.
type SpeakerStats struct {
	Speaker      string  `json:"speaker"`
	Utterances   int     `json:"utterances"`
	Words        int     `json:"words"`
	AverageWords float64 `json:"average_words"`
}

// Summary is the analysis of a single transcript file.
type Summary struct {
	Filename   string         `json:"filename"`
	Utterances int            `json:"utterances"`
	Words      int            `json:"words"`
	Speakers   []SpeakerStats `json:"speakers"`
}

// Build renders the summary as a PDF report.
func Build(s Summary) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		Build()

	m := maroto.New(cfg)

	m.AddRow(12, text.NewCol(12, "Transcript Analysis Report", props.Text{
		Size:  16,
		Style: fontstyle.Bold,
		Align: align.Center,
	}))
	m.AddRow(8, text.NewCol(12, s.Filename, props.Text{
		Size:  10,
		Align: align.Center,
	}))

	m.AddRow(10, text.NewCol(12, fmt.Sprintf("Utterances: %d    Words: %d    Speakers: %d",
		s.Utterances, s.Words, len(s.Speakers)), props.Text{
		Size: 11,
		Top:  2,
	}))

	m.AddRow(8,
		text.NewCol(4, "Speaker", props.Text{Style: fontstyle.Bold, Top: 2}),
		text.NewCol(3, "Utterances", props.Text{Style: fontstyle.Bold, Top: 2, Align: align.Right}),
		text.NewCol(2, "Words", props.Text{Style: fontstyle.Bold, Top: 2, Align: align.Right}),
		text.NewCol(3, "Avg words", props.Text{Style: fontstyle.Bold, Top: 2, Align: align.Right}),
	)

	for _, sp := range s.Speakers {
		m.AddRow(6,
			text.NewCol(4, sp.Speaker),
			text.NewCol(3, fmt.Sprintf("%d", sp.Utterances), props.Text{Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%d", sp.Words), props.Text{Align: align.Right}),
			text.NewCol(3, fmt.Sprintf("%.1f", sp.AverageWords), props.Text{Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	return doc.GetBytes(), nil
}
