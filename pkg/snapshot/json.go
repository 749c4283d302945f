package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadJSON decodes a network in the same json layout Network marshals to. The result is
// not built yet.
func ReadJSON(r io.Reader) (*Network, error) {
	var n Network
	if err := json.NewDecoder(r).Decode(&n); err != nil {
		return nil, fmt.Errorf("decode network json: %w", err)
	}
	return &n, nil
}

func LoadJSONFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f)
}
