package install

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/doeshing/installez/internal/domain"
)

// ErrMalformedRequest is returned for payloads that are not a JSON array of strings.
var ErrMalformedRequest = errors.New("malformed install request")

// DecodeRequest parses one inbound UI message. Empty identifiers are dropped;
// order and duplicates are preserved.
func DecodeRequest(data []byte) (domain.InstallRequest, error) {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return domain.InstallRequest{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if ids == nil {
		return domain.InstallRequest{}, fmt.Errorf("%w: expected a JSON array of strings", ErrMalformedRequest)
	}
	return NewRequest(ids), nil
}

// NewRequest builds a request with a fresh id from identifiers.
func NewRequest(ids []string) domain.InstallRequest {
	apps := make([]domain.AppID, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		apps = append(apps, domain.AppID(id))
	}
	return domain.InstallRequest{ID: uuid.NewString(), Apps: apps}
}
