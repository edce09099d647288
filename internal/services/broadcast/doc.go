// Package broadcast schedules and fans out daily quiz messages.
//
// Each configured slot is an independent Idle/Running state machine: a
// trigger (cron or manual) that arrives while the slot is running is
// dropped and counted, never queued. A run composes one message, takes a
// single subscriber snapshot, then delivers over a bounded worker pool
// with global rate limiting. Permanently unreachable recipients are
// unsubscribed; transient failures are only logged.
package broadcast
