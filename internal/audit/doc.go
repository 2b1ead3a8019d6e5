// Package audit implements async event dispatching for security-relevant
// session lifecycle operations: connect attempts, redirect ingestion, expiry
// sweeps, escalation rejections, and disconnects.
package audit
