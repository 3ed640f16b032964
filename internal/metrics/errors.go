package metrics

import "errors"

// ErrWriteFailed wraps failures to persist the textfile.
var ErrWriteFailed = errors.New("metrics textfile write failed")
