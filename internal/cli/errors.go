package cli

import "errors"

var (
	errTargetFlags = errors.New("provide exactly one of --onto, --end, --journey or --feature")
	errUnknownOp   = errors.New("unknown op")
	errSurface     = errors.New("unknown surface (want journeys, features or stories)")
)
