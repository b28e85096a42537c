// Package service holds the business-logic orchestration layer: it
// sits between the HTTP handlers and the store/cache/clickqueue
// packages, and owns every invariant spec.md assigns to C9–C12.
package service

import "time"

func clockNow() time.Time { return time.Now().UTC() }
