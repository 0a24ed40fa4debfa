package idhash

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	"montecarlo-lab/internal/domain"
)

// idBytes is how many hash bytes an identifier keeps.
const idBytes = 16

// ComputeRunID computes a deterministic run_id.
// Formula: SHA256(params_json|seed|created_at_ms), first 16 bytes, base58.
func ComputeRunID(p domain.SimulationParams, seed uint64, createdAtMs int64) string {
	params, err := json.Marshal(p)
	if err != nil {
		// SimulationParams holds only plain values
		panic(fmt.Sprintf("marshal simulation params: %v", err))
	}

	data := fmt.Sprintf("%s|%d|%d", params, seed, createdAtMs)
	return encode(data)
}

// ComputeScenarioID computes a deterministic scenario_id.
// Formula: SHA256(name|created_at_ms), first 16 bytes, base58.
func ComputeScenarioID(name string, createdAtMs int64) string {
	data := fmt.Sprintf("%s|%d", name, createdAtMs)
	return encode(data)
}

func encode(data string) string {
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:idBytes])
}

// Decode returns the raw identifier bytes, or an error if id is not a
// well-formed identifier.
func Decode(id string) ([]byte, error) {
	raw, err := base58.Decode(id)
	if err != nil {
		return nil, fmt.Errorf("decode id: %w", err)
	}
	if len(raw) != idBytes {
		return nil, fmt.Errorf("decode id: expected %d bytes, got %d", idBytes, len(raw))
	}
	return raw, nil
}
