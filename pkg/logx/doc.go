// Package logx wraps zerolog behind a small, service-friendly API.
//
// Components receive a Logger by value; the zero value is a no-op, so
// wiring code never needs nil checks. A Logger obtained from Service
// stays live across Apply() calls (level/sink changes take effect on
// loggers already handed out).
package logx
