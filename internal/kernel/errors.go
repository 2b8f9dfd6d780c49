package kernel

import "errors"

// ErrSourceEqualSink indicates source and sink sets overlap, which would
// make the super-source/super-sink construction trivially degenerate.
var ErrSourceEqualSink = errors.New("kernel: source and sink sets overlap")
