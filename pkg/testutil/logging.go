package testutil

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// TestLogLevelEnv overrides the level used for the standard logger in tests
const TestLogLevelEnv = "TEST_LOG_LEVEL"

// Importing testutil silences the standard logger unless the test binary was
// started with -v.
func init() {
	level := logrus.TraceLevel
	if parsed, err := logrus.ParseLevel(os.Getenv(TestLogLevelEnv)); err == nil {
		level = parsed
	}
	logrus.SetLevel(level)

	if !isVerbose(os.Args[1:]) {
		logrus.SetOutput(io.Discard)
	}
}

func isVerbose(args []string) bool {
	for _, arg := range args {
		switch strings.TrimLeft(arg, "-") {
		case "test.v", "test.v=true", "v", "v=true":
			return true
		}
	}
	return false
}
