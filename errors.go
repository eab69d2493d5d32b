package epicore

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError wraps a failure discovered while building a Model:
// duplicate state labels, a virus missing init/post, an out-of-range
// state id, a prevalence outside [0,1], or a malformed params file.
func ConfigError(format string, args ...interface{}) error {
	return errors.Wrap(fmt.Errorf(format, args...), "config error")
}

// RangeError wraps a failure where an action targets a state >=
// nstates, removes a virus/tool at an invalid index into the agent's
// hosted list, or
// supplies a queue delta outside {-2..2}.
func RangeError(format string, args ...interface{}) error {
	return errors.Wrap(fmt.Errorf(format, args...), "range error")
}

// IOError wraps a file open/read failure with the offending path.
func IOError(path string, cause error) error {
	return errors.Wrapf(cause, "io error: %s", path)
}

// FormatError wraps an edgelist/params parse failure with its line
// number.
func FormatError(path string, line int, cause error) error {
	return errors.Wrapf(cause, "format error: %s:%d", path, line)
}

// LogicError wraps an internal invariant violation — these indicate a
// bug in epicore itself, not a caller mistake.
func LogicError(format string, args ...interface{}) error {
	return errors.Wrap(fmt.Errorf(format, args...), "logic error")
}
