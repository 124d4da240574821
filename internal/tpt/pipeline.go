package tpt

import (
	"fmt"
	"log"
)

// Request carries everything a single calculation needs. The HTTP layer
// validates thresholds as parseable floats and saves the upload to a
// local path before invoking the pipeline; OriginalFileName is echoed in
// the report and never used for parsing.
type Request struct {
	FilePath              string
	FileType              string // "csv" or "excel"
	LowThreshold          float64
	HighThreshold         float64
	IncludeExclusionGroup bool
	OriginalFileName      string
	UserColumnMap         map[string]string // semantic key -> raw column label
	ForcedHeaderRow       *int              // 0-based, bypasses auto-detection
}

// Pipeline runs a single file through read -> normalize -> sanitize ->
// compute -> assemble. Each invocation is a pure function of its request
// except for the best-effort snapshot write through the sink.
type Pipeline struct {
	reader *Reader
	sink   Sink // optional; nil disables snapshots
	group  []string
}

// NewPipeline builds a calculator. A nil sink disables snapshot writes;
// empty groupNames falls back to the default exclusion group.
func NewPipeline(sink Sink, groupNames []string) *Pipeline {
	if len(groupNames) == 0 {
		groupNames = DefaultExclusionGroup
	}
	return &Pipeline{reader: NewReader(), sink: sink, group: groupNames}
}

// Calculate produces a report for the request. The returned path is the
// snapshot location when one was written ("" otherwise); snapshot
// failures are logged and never affect the result. Any panic during
// processing is converted to an UnexpectedError so nothing escapes the
// core boundary.
func (p *Pipeline) Calculate(req Request) (report *Report, snapshotPath string, err error) {
	defer func() {
		if r := recover(); r != nil {
			report, snapshotPath = nil, ""
			err = &UnexpectedError{Cause: fmt.Errorf("%v", r)}
		}
	}()

	table, headerRow, err := p.reader.Read(req.FilePath, req.FileType, req.ForcedHeaderRow)
	if err != nil {
		return nil, "", err
	}

	normalized, mapping := Normalize(table, req.UserColumnMap)
	rows, err := Sanitize(normalized, mapping)
	if err != nil {
		return nil, "", err
	}

	metrics := Compute(rows, req.LowThreshold, req.HighThreshold, req.IncludeExclusionGroup, p.group)
	report = Assemble(rows, metrics, req.LowThreshold, req.HighThreshold, req.OriginalFileName, headerRow)

	if p.sink != nil {
		path, sinkErr := p.sink.Store(report)
		if sinkErr != nil {
			log.Printf("[tpt] snapshot write failed (ignored): %v", sinkErr)
		} else {
			snapshotPath = path
		}
	}

	return report, snapshotPath, nil
}
