package descriptor

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Encode writes d as JSON indented by two spaces.
func Encode(w io.Writer, d *Descriptor) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode descriptor: %w", err)
	}
	return nil
}

// Marshal returns the encoded form of d.
func Marshal(d *Descriptor) ([]byte, error) {
	var sb strings.Builder
	if err := Encode(&sb, d); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// DefaultFileName is the output file used when no path is given.
func DefaultFileName(contractName string) string {
	return "calldata-" + strings.ToLower(contractName) + ".json"
}
