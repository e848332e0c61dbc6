package configtest

import "github.com/ababil/ababil/conf"

// SetupConfig snapshots conf.Server and returns a function restoring it.
// Use with DeferCleanup.
func SetupConfig() func() {
	oldValues := *conf.Server
	return func() {
		conf.Server = &oldValues
	}
}
