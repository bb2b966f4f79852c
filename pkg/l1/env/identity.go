// Package env provides ground-segment environment helpers.
package env

import (
	"fmt"
	"os"

	"github.com/denisbrodbeck/machineid"
)

// ClientID derives a stable, host-unique client identifier for broker
// connections. The machine id is hashed with the app name so the raw id
// never leaves the host; hostname and pid serve as the fallback.
func ClientID(app string) string {
	id, err := machineid.ProtectedID(app)
	if err != nil {
		host, _ := os.Hostname()
		return fmt.Sprintf("%s-%s-%d", app, host, os.Getpid())
	}
	return fmt.Sprintf("%s-%s", app, id[:12])
}
