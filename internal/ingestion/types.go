// Package ingestion defines the document payloads accepted over HTTP and
// carried on the document-ingest Kafka topic.
package ingestion

import (
	"fmt"
	"strings"
	"time"
)

const maxFieldLength = 1 << 20

// DocumentEvent is one document to index. Each entry of Fields is analyzed
// separately and scored as its own field.
type DocumentEvent struct {
	DocumentID string            `json:"document_id"`
	Fields     map[string]string `json:"fields"`
	IngestedAt time.Time         `json:"ingested_at,omitempty"`
}

// Validate checks the event carries an ID and bounded, named fields.
func (e DocumentEvent) Validate() error {
	if strings.TrimSpace(e.DocumentID) == "" {
		return fmt.Errorf("document_id is required")
	}
	if len(e.Fields) == 0 {
		return fmt.Errorf("document %s has no fields", e.DocumentID)
	}
	for name, text := range e.Fields {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("document %s has an unnamed field", e.DocumentID)
		}
		if len(text) > maxFieldLength {
			return fmt.Errorf("field %s of document %s exceeds %d bytes", name, e.DocumentID, maxFieldLength)
		}
	}
	return nil
}
