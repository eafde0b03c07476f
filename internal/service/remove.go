package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
	"github.com/ZebulonRouseFrantzich/suiup/internal/spec"
	"github.com/ZebulonRouseFrantzich/suiup/internal/store"
)

// RemoveResult reports what a removal deleted.
type RemoveResult struct {
	Removed []store.Record
	// Missing lists files that were already gone. They are warnings only.
	Missing []string
	// DefaultRemoved is set when the promoted file was deleted too.
	DefaultRemoved bool
}

// Remove deletes every installed file of bin together with its default file
// and drops its entries from both stores.
func (o *Orchestrator) Remove(ctx context.Context, bin spec.Binary) (*RemoveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("operation cancelled: %w", err)
	}

	// Both stores are loaded before anything is deleted.
	installed, err := o.loadInstalled()
	if err != nil {
		return nil, err
	}
	defaults, err := o.loadDefaults()
	if err != nil {
		return nil, err
	}

	records := installed.RemoveBinary(bin.Name)
	_, hadDefault := defaults.Get(bin.Name)
	if len(records) == 0 && !hadDefault {
		return nil, apperr.NotFound(fmt.Sprintf("No installed binaries found for %s", bin.Name),
			"Use `suiup show` to see installed binaries")
	}

	result := &RemoveResult{Removed: records}
	for _, r := range records {
		path := o.recordPath(r)
		missing, err := removeFile(path)
		if err != nil {
			return nil, err
		}
		if missing {
			result.Missing = append(result.Missing, path)
		}
	}

	if hadDefault {
		path := o.DefaultPath(bin.Name)
		missing, err := removeFile(path)
		if err != nil {
			return nil, err
		}
		if missing {
			result.Missing = append(result.Missing, path)
		} else {
			result.DefaultRemoved = true
		}
		defaults.Delete(bin.Name)
	}

	if err := installed.Save(); err != nil {
		return nil, fmt.Errorf("save installed binaries: %w", err)
	}
	if err := defaults.Save(); err != nil {
		return nil, fmt.Errorf("save default binaries: %w", err)
	}

	o.logger.Info("removed binary", "binary", bin.Name, "records", len(records), "missing", len(result.Missing))
	return result, nil
}

// removeFile deletes path. A file that is already gone is reported as
// missing rather than failing the removal.
func removeFile(path string) (missing bool, err error) {
	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove %s: %w", path, err)
	}
	return false, nil
}
