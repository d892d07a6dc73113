package sumcodec

import (
	"os"

	logging "github.com/op/go-logging"
)

// log is package-level like the teacher's own SetupLogging-configured
// logger: a library has one logger per package, not one per call site.
var log = logging.MustGetLogger("sumcodec")

func init() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, logging.MustStringFormatter(
		`%{time:15:04:05.000} %{level:.4s} %{module}: %{message}`,
	))
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.WARNING, "")
	logging.SetBackend(leveled)
}

// SetLogLevel adjusts sumcodec's log verbosity at runtime, mirroring the
// teacher library's own SetupLogging(logLevel) entry point.
func SetLogLevel(level logging.Level) {
	logging.SetLevel(level, "sumcodec")
}
