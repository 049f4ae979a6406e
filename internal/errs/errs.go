package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat indicates no provider recognizes the file extension.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrFileRead indicates the file could not be opened or statted.
	ErrFileRead = errors.New("file read error")
	// ErrCorruptedFile indicates an explicit content-validation failure.
	ErrCorruptedFile = errors.New("corrupted file")
	// ErrMetadataExtraction indicates structural parsing succeeded but no
	// identifying data could be derived.
	ErrMetadataExtraction = errors.New("metadata extraction failed")
	// ErrIntegrityCheck indicates an external verifier reported a bad dump.
	ErrIntegrityCheck = errors.New("integrity check failed")
	// ErrHashComputation indicates hashing exhausted its retries.
	ErrHashComputation = errors.New("hash computation failed")
	// ErrValidation indicates an invalid scan root or configuration.
	ErrValidation = errors.New("validation error")
	// ErrExternalTool indicates an external binary failed or is unusable.
	ErrExternalTool = errors.New("external tool error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification via errors.Is. The
// marker should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
