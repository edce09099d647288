package transport

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"permanent", &DeliveryError{Kind: FailurePermanent, Err: errors.New("blocked")}, FailurePermanent},
		{"transient", &DeliveryError{Kind: FailureTransient, Err: errors.New("timeout")}, FailureTransient},
		{"wrapped permanent", fmt.Errorf("send: %w", &DeliveryError{Kind: FailurePermanent, Err: errors.New("gone")}), FailurePermanent},
		{"plain error defaults to transient", errors.New("socket closed"), FailureTransient},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeliveryErrorUnwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("blocked by user")
	err := &DeliveryError{Kind: FailurePermanent, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("DeliveryError does not unwrap to the underlying error")
	}
	if err.Error() == "" {
		t.Error("empty error string")
	}
}
