package ekidata2sql

import (
	"fmt"
	"path/filepath"
	"slices"
)

// Categories are the input file categories in load order. Each is matched by the glob
// <category>*.csv.
var Categories = []string{"company", "line", "station", "join"}

// Inputs maps each category to the file chosen for it. A missing category has no entry.
type Inputs map[string]string

// LocateFile returns the candidate file for category in dir, or "" if there is none. When
// several files match, the one with the greatest name in plain string order wins, so
// dated snapshots such as station20230101.csv beat station20220101.csv.
func LocateFile(dir, category string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, category+"*.csv"))
	if err != nil {
		return "", fmt.Errorf("%w: locate %s: %w", ErrInput, category, err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	slices.Sort(matches)
	return matches[len(matches)-1], nil
}

// LocateInputs finds the file for every category. If any is missing it returns the
// partial Inputs together with a *MissingInputsError naming all missing categories.
func LocateInputs(dir string) (Inputs, error) {
	inputs := make(Inputs, len(Categories))
	var missing []string
	for _, category := range Categories {
		path, err := LocateFile(dir, category)
		if err != nil {
			return nil, err
		}
		if path == "" {
			missing = append(missing, category)
			continue
		}
		inputs[category] = path
	}
	if len(missing) > 0 {
		return inputs, &MissingInputsError{Dir: dir, Categories: missing, Found: inputs}
	}
	return inputs, nil
}
