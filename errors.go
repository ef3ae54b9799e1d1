package aardict

import "fmt"

// FormatError reports that a file could not be recognized or parsed as a
// dictionary of the expected format: bad magic, incompatible version, or
// malformed metadata/header. It always aborts dictionary construction.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// VolumeMismatchError reports that an aar volume's timestamp disagrees with
// volume 0's, per the invariant in spec.md §3.
type VolumeMismatchError struct {
	Primary string
	Volume  string
}

func (e *VolumeMismatchError) Error() string {
	return fmt.Sprintf("%s: volume %s has a timestamp different from the primary file", e.Primary, e.Volume)
}
