package tests

import (
	"testing"

	"github.com/ababil/ababil/conf"
	"github.com/ababil/ababil/log"
)

// Init prepares a test binary: quiet logs and default configuration.
func Init(t *testing.T, skipOnShort bool) {
	if skipOnShort && testing.Short() {
		t.Skip("skipping test in short mode.")
	}
	if err := conf.Load(); err != nil {
		t.Fatalf("loading default configuration: %v", err)
	}
	log.SetLevel(log.LevelFatal)
}
