package messagequeue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Validate checks whether data is valid JSON conforming to the schema
// associated with the given subject. Unknown subjects only need valid JSON.
func Validate(subject string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON on subject %s", subject)
	}
	if !strings.HasPrefix(subject, SubjectEventsPrefix) {
		return nil
	}

	var p EventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", subject, err)
	}
	if p.TenantID == "" {
		return errors.New("schema validation failed: tenant_id is required")
	}
	if p.Type == "" {
		return errors.New("schema validation failed: type is required")
	}
	if want := strings.TrimPrefix(subject, SubjectEventsPrefix); p.Type != want {
		return fmt.Errorf("schema validation failed: type %q does not match subject %s", p.Type, subject)
	}
	return nil
}
