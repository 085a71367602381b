package storage

import (
	"encoding/json"
	"io"
)

func ExportJSON(w io.Writer, meta *RunMetadata) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
