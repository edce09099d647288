// Package transport defines the outbound delivery contract. The broadcast
// pipeline only sees this interface; which messenger implements it is a
// wiring decision.
package transport

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind classifies a delivery failure.
//
// Transient failures (timeouts, rate limits, network hiccups) are expected
// to recover by the next trigger and cause no state change. Permanent
// failures mean the recipient cannot be reached again until they act
// (e.g. they blocked the bot) and should trigger unsubscription.
type FailureKind int

const (
	FailureTransient FailureKind = iota
	FailurePermanent
)

func (k FailureKind) String() string {
	if k == FailurePermanent {
		return "permanent"
	}
	return "transient"
}

// DeliveryError carries the classification alongside the underlying error.
type DeliveryError struct {
	Kind FailureKind
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed (%s): %v", e.Kind, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Classify extracts the failure kind from a send error. Anything that is
// not explicitly marked permanent counts as transient: wrongly keeping a
// dead subscriber costs one failed send per trigger, wrongly dropping a
// live one loses them silently.
func Classify(err error) FailureKind {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Kind
	}
	return FailureTransient
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Deliverer sends one rendered message to one recipient.
type Deliverer interface {
	Send(ctx context.Context, chatID int64, text string, opt *SendOptions) error
}
