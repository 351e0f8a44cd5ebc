package xcm

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Codec errors. Decode failures are wrapped in a *DecodeError carrying the
// offending raw value.
var (
	ErrUnknownVersion         = errors.New("unknown xcm version")
	ErrMalformedVariant       = errors.New("malformed variant, expected [tag, payload]")
	ErrUnknownVariant         = errors.New("unknown variant")
	ErrMalformedJunctions     = errors.New("malformed junctions")
	ErrTooManyJunctions       = errors.New("too many junctions")
	ErrMalformedGeneralKey    = errors.New("malformed general key")
	ErrMalformedNumber        = errors.New("malformed number")
	ErrUnsupportedInVersion   = errors.New("not supported in this xcm version")
	ErrUnsupportedInstruction = errors.New("unsupported instruction")
	ErrZeroMaxAssets          = errors.New("max_assets must be at least 1")
)

// maxRawInError bounds how much of the raw value is echoed in messages.
const maxRawInError = 128

// DecodeError describes a value that could not be decoded.
type DecodeError struct {
	What    string
	Version Version
	Raw     json.RawMessage
	Err     error
}

func (e *DecodeError) Error() string {
	raw := string(e.Raw)
	if len(raw) > maxRawInError {
		raw = raw[:maxRawInError] + "..."
	}
	return fmt.Sprintf("xcm: decode %s (%s): %v: %s", e.What, e.Version, e.Err, raw)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErr(what string, v Version, raw json.RawMessage, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{What: what, Version: v, Raw: raw, Err: err}
}

func unsupported(what string, v Version) error {
	return fmt.Errorf("xcm: %s in %s: %w", what, v, ErrUnsupportedInVersion)
}
