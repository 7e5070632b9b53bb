package repository

import (
	"bytes"
	"encoding/json"
	"fmt"

	"civic-registry/internal/domain"
)

func encodeDeliveryReport(report []domain.DeliveryEntry) (string, error) {
	if report == nil {
		report = []domain.DeliveryEntry{}
	}
	b, err := json.Marshal(report)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeDeliveryReport accepts the JSONB array and also a JSON string holding
// the array, which older writers stored.
func decodeDeliveryReport(raw []byte) ([]domain.DeliveryEntry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []domain.DeliveryEntry{}, nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("decode delivery report: %w", err)
		}
		return decodeDeliveryReport([]byte(inner))
	}
	report := []domain.DeliveryEntry{}
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode delivery report: %w", err)
	}
	return report, nil
}
