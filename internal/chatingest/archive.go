package chatingest

import (
	"encoding/json"

	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// marshalBatch serializes a fetched message window for archival. Marshal
// failure is never fatal to the caller; an empty payload is archived instead
// of aborting the reconciliation pass.
func marshalBatch(messages []interfaces.ChatMessage) []byte {
	data, err := json.Marshal(messages)
	if err != nil {
		return []byte("[]")
	}
	return data
}
