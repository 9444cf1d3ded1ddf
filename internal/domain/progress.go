package domain

import "github.com/google/uuid"

// Progress is the on-demand aggregate over a file set. It is derived from a
// single query over file rows, never from cached counters, so it always
// reflects the latest committed writes.
type Progress struct {
	FileSetID uuid.UUID `json:"file_set_id"`
	Total     int       `json:"total_files"`
	Processed int       `json:"processed"`
	Failed    int       `json:"failed"`
	InFlight  int       `json:"uploading"`
	Percent   float64   `json:"progress_percentage"`
}

// NewProgress fills the derived fields from the three counts.
func NewProgress(fileSetID uuid.UUID, total, processed, failed int) *Progress {
	p := &Progress{
		FileSetID: fileSetID,
		Total:     total,
		Processed: processed,
		Failed:    failed,
		InFlight:  total - processed - failed,
	}

	if total > 0 {
		p.Percent = float64(processed) / float64(total) * 100
	}

	return p
}
