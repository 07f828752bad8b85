package domain

import "fmt"

// LoadIssue reports a corpus record that could not be loaded. Loading is
// per-record: a bad file is skipped and recorded here, the rest of the corpus
// still loads.
type LoadIssue struct {
	Location string `json:"location"` // file path or other source identifier
	Message  string `json:"message"`
}

func (i LoadIssue) String() string {
	return fmt.Sprintf("%s: %s", i.Location, i.Message)
}

// ValidationIssue reports one defect found in a product entry. Validators
// return the full list for an entry rather than stopping at the first
// problem; they never return errors for bad content.
type ValidationIssue struct {
	Field   string `json:"field"` // dotted path, e.g. "all_versions[2].priority"
	Message string `json:"message"`
}

func (i ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}
