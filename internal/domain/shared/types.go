package shared

import (
	"fmt"
	"time"
)

// AuditTimeLayout is the locale timestamp used in audit trail entries
const AuditTimeLayout = "02/01/2006, 15:04:05"

// AuditEntry formats "<name> in <timestamp>". Report generation parses these
// strings as free text, so the shape must stay stable.
func AuditEntry(name string, at time.Time) string {
	return fmt.Sprintf("%s in %s", name, at.Format(AuditTimeLayout))
}
