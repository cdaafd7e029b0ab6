package firefly

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ImportMarker is present in the notes of every account the importer
// creates. Deleting "imported" accounts keys off this string.
const ImportMarker = "Imported from GnuCash"

const (
	metadataBegin = "--- BEGIN GNUCASH METADATA ---"
	metadataEnd   = "--- END GNUCASH METADATA ---"
)

var ErrMalformedMetadata = errors.New("malformed import metadata")

// ImportMetadata records where an imported account came from.
type ImportMetadata struct {
	FullName string `json:"full_name"`
	Code     string `json:"code,omitempty"`
	Type     string `json:"type,omitempty"`
}

// ImportNotes builds the notes of an imported account: the given text, the
// import marker and the metadata block.
func ImportNotes(text string, md ImportMetadata) (string, error) {
	raw, err := json.Marshal(md)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if text = strings.TrimSpace(text); text != "" {
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	sb.WriteString(ImportMarker)
	sb.WriteString("\n")
	sb.WriteString(metadataBegin)
	sb.WriteString("\n")
	sb.Write(raw)
	sb.WriteString("\n")
	sb.WriteString(metadataEnd)
	return sb.String(), nil
}

// ParseMetadata extracts the metadata block from notes. It returns nil when
// the notes carry no block.
func ParseMetadata(notes string) (*ImportMetadata, error) {
	lines := strings.Split(strings.ReplaceAll(notes, "\r\n", "\n"), "\n")

	begin := -1
	for i, line := range lines {
		switch strings.TrimSpace(line) {
		case metadataBegin:
			begin = i
		case metadataEnd:
			if begin < 0 {
				return nil, fmt.Errorf("%w: end marker without begin", ErrMalformedMetadata)
			}
			var md ImportMetadata
			body := strings.Join(lines[begin+1:i], "\n")
			if err := json.Unmarshal([]byte(body), &md); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
			}
			return &md, nil
		}
	}

	if begin >= 0 {
		return nil, fmt.Errorf("%w: unterminated block", ErrMalformedMetadata)
	}
	return nil, nil
}
