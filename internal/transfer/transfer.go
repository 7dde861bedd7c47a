// Package transfer implements the bulk snapshot interchange format: a
// single JSON object with exactly the eight entity names as keys, each
// holding an array of flat records. Parsing validates shape only;
// business rules live elsewhere. Validate-then-commit: a snapshot with
// problems is rejected whole, never partially applied.
package transfer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rooststack/coopsync/internal/models"
)

// ValidationError lists every shape problem found in a snapshot.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid snapshot: " + strings.Join(e.Problems, "; ")
}

// ParseSnapshot decodes and validates an interchange document. All
// eight entities must be present and array-typed; every problem found
// is reported in one ValidationError.
func ParseSnapshot(data []byte) (models.Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing snapshot document: %w", err)
	}

	var problems []string

	snapshot := make(models.Snapshot, len(models.Entities))

	for _, entity := range models.Entities {
		payload, ok := raw[entity]
		if !ok {
			problems = append(problems, fmt.Sprintf("missing entity %q", entity))
			continue
		}

		var records models.Collection
		if err := json.Unmarshal(payload, &records); err != nil {
			problems = append(problems, fmt.Sprintf("entity %q is not an array of records", entity))
			continue
		}

		if records == nil {
			records = models.Collection{}
		}

		snapshot[entity] = records
	}

	for key := range raw {
		if !models.KnownEntity(key) {
			problems = append(problems, fmt.Sprintf("unknown entity %q", key))
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	return snapshot, nil
}

// MarshalSnapshot serializes a snapshot as the pretty-printed
// interchange document. Missing entities are emitted as empty arrays so
// the output always round-trips through ParseSnapshot.
func MarshalSnapshot(snapshot models.Snapshot) ([]byte, error) {
	doc := make(map[string]models.Collection, len(models.Entities))

	for _, entity := range models.Entities {
		records := snapshot[entity]
		if records == nil {
			records = models.Collection{}
		}

		doc[entity] = records
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing snapshot: %w", err)
	}

	return data, nil
}
