package transform

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/stanford-ddl/transcript-analyzer/internal/report"
)

// Transcript analyzes a CSV of conversation utterances and produces a
// PDF report with per-speaker statistics. The summary JSON mirrors the
// report contents.
type Transcript struct{}

type utterance struct {
	Speaker string `csv:"speaker"`
	Text    string `csv:"text"`
}

func (Transcript) Apply(_ context.Context, filename string, in io.Reader) (*Output, error) {
	utterances, err := parseUtterances(in)
	if err != nil {
		return nil, err
	}

	summary := analyze(filename, utterances)

	pdf, err := report.Build(summary)
	if err != nil {
		return nil, err
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}

	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	return &Output{
		Name:    base + "_report.pdf",
		Data:    bytes.NewReader(pdf),
		Summary: summaryJSON,
	}, nil
}

func parseUtterances(r io.Reader) ([]utterance, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	var utterances []utterance
	for {
		var u utterance

		err := dec.Decode(&u)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to decode utterance #%d: %w", len(utterances)+1, err)
		}

		if u.Speaker == "" {
			return nil, fmt.Errorf("utterance #%d has no speaker", len(utterances)+1)
		}

		utterances = append(utterances, u)
	}

	return utterances, nil
}

func analyze(filename string, utterances []utterance) report.Summary {
	bySpeaker := make(map[string]*report.SpeakerStats)

	totalWords := 0
	for _, u := range utterances {
		stats, ok := bySpeaker[u.Speaker]
		if !ok {
			stats = &report.SpeakerStats{Speaker: u.Speaker}
			bySpeaker[u.Speaker] = stats
		}

		words := len(strings.Fields(u.Text))
		stats.Utterances++
		stats.Words += words
		totalWords += words
	}

	speakers := make([]report.SpeakerStats, 0, len(bySpeaker))
	for _, stats := range bySpeaker {
		stats.AverageWords = float64(stats.Words) / float64(stats.Utterances)
		speakers = append(speakers, *stats)
	}

	// Most talkative first, name as tiebreak for stable output.
	sort.Slice(speakers, func(i, j int) bool {
		if speakers[i].Words != speakers[j].Words {
			return speakers[i].Words > speakers[j].Words
		}
		return speakers[i].Speaker < speakers[j].Speaker
	})

	return report.Summary{
		Filename:   filename,
		Utterances: len(utterances),
		Words:      totalWords,
		Speakers:   speakers,
	}
}
