package domain

import "fmt"

// ResolutionError reports that a coordinate could not be resolved to exactly one file.
type ResolutionError struct {
	Coordinate Coordinate
	Repository string
	Err        error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %s from %s: %v", e.Coordinate, e.Repository, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ExtractionError reports a failed archive extraction. The cache directory is
// never left with a marker after one of these.
type ExtractionError struct {
	Archive   string
	Directory string
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s into %s: %v", e.Archive, e.Directory, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// DescriptorWriteError reports that a descriptor could not be persisted.
type DescriptorWriteError struct {
	Path string
	Err  error
}

func (e *DescriptorWriteError) Error() string {
	return fmt.Sprintf("failed to write descriptor %s: %v", e.Path, e.Err)
}

func (e *DescriptorWriteError) Unwrap() error { return e.Err }

// ErrNoArtifacts creates the error for a coordinate that resolved to nothing
func ErrNoArtifacts() error {
	return fmt.Errorf("no artifact resolved")
}

// ErrAmbiguousArtifacts creates the error for a coordinate that resolved to several files
func ErrAmbiguousArtifacts(files []string) error {
	return fmt.Errorf("expected exactly one artifact, resolved %d: %v", len(files), files)
}
