package reworm

import (
	rerrors "github.com/pedronauck/reworm/internal/errors"
	"github.com/pedronauck/reworm/pkg/value"
)

// Sentinels for errors.Is. Errors returned by this package carry the same
// code plus the store identifier and detail.
var (
	// ErrTypeMismatch is returned by Set when a record meets a non-record.
	ErrTypeMismatch = value.ErrTypeMismatch

	// ErrUnknownStore marks diagnostics about identifiers never created.
	ErrUnknownStore = rerrors.New("R002")

	// ErrInvalidSelector is returned by Path for malformed paths.
	ErrInvalidSelector = rerrors.New("R003")

	// ErrListenerPanic is reported to observers for recovered panics.
	ErrListenerPanic = rerrors.New("R020")

	// ErrDuplicateStore is the W001 warning logged on identifier reuse.
	ErrDuplicateStore = rerrors.New("W001")
)
