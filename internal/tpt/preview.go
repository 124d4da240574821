package tpt

// ColumnPreview reports what the normalizer would make of a file's
// headers, so the UI can show detected bindings and let the user correct
// them before calculating.
type ColumnPreview struct {
	HeaderRow *int              `json:"header_row"`
	Columns   []string          `json:"columns"`
	Detected  map[string]string `json:"detected"` // semantic key -> raw column label
}

// Preview reads only the file's structure: the header row the reader
// would pick, the cleaned column list, and which raw column each
// canonical field resolves to under the default rules.
func (p *Pipeline) Preview(path, fileType string, forcedHeaderRow *int) (*ColumnPreview, error) {
	table, headerRow, err := p.reader.Read(path, fileType, forcedHeaderRow)
	if err != nil {
		return nil, err
	}

	_, mapping := Normalize(table, nil)

	detected := make(map[string]string)
	for key, field := range userMapKeys {
		if idx := mapping.Col(field); idx >= 0 {
			detected[key] = mapping.Columns[idx]
		}
	}

	return &ColumnPreview{
		HeaderRow: headerRow,
		Columns:   mapping.Columns,
		Detected:  detected,
	}, nil
}
