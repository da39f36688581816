package coursedoc

import (
	"github.com/akeil/coursedoc/internal/logging"
)

// SetLogLevel sets the level for diagnostic output on stderr.
// Valid levels are "debug", "info", "warning", "error" and "none";
// unknown values disable logging.
func SetLogLevel(level string) {
	logging.SetLevel(logging.ParseLevel(level))
}
