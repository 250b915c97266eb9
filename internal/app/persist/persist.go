// Package persist reads the appliance's four persisted JSON record files
// (whitelist, profiles, bin_profiles, passageways). Writing them back is
// the REST collaborator's responsibility (spec'd out of scope here); this
// package only gives filewatch's hot-reload path a way to pick the
// externally-written changes back up.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReadJSON reads path and unmarshals it into a value of type T. A missing
// file is reported as a zero value with no error, since an unconfigured
// store is valid at first boot.
func ReadJSON[T any](path string) (T, error) {
	var zero T

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return zero, nil
		}

		return zero, fmt.Errorf("persist: read %s: %w", path, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, fmt.Errorf("persist: parse %s: %w", path, err)
	}

	return v, nil
}
