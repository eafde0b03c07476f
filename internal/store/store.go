// Package store persists the two JSON ledgers suiup keeps: every installed
// binary, and the binary currently promoted as default for each name.
//
// Both documents are read fully and written in one atomic replace. A file
// that fails to decode is an integrity error; it is never reset to empty.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
	"github.com/ZebulonRouseFrantzich/suiup/internal/transaction"
)

// readDocument decodes the JSON document at path into v. A missing file is
// first created with the empty document so later saves have a target.
func readDocument(path string, v any, empty []byte) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := transaction.WriteFileAtomic(path, empty, 0o644); err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		data = empty
	} else if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return &apperr.Error{
			Kind:    apperr.KindIntegrity,
			Message: "cannot parse " + path,
			Hint:    "Fix or delete the file; suiup will not overwrite it",
			Err:     err,
		}
	}
	return nil
}

// writeDocument replaces path with the indented encoding of v.
func writeDocument(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := transaction.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
