// Package sentinel holds the storage-level facts shared by the paper, review,
// audit and file stores. Stores return them wrapped; services translate them
// into domain errors.
package sentinel

import "errors"

var (
	// ErrNotFound: no paper, review record, user or stored file under the key.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a uniqueness rule rejected the write.
	ErrConflict = errors.New("conflict")
)
