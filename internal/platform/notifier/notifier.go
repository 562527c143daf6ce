// Package notifier delivers operational notifications (clock events, OTP
// dispatch) to an external channel. Delivery is best-effort: failures are
// logged and never surfaced to the flows that triggered them.
package notifier

// Notifier is the outbound notification channel used by the services.
type Notifier interface {
	// NotifyClockEvent announces a successful clock transition.
	NotifyClockEvent(userName, orgName, transition string)

	// NotifyOTP delivers a one-time code to the operator channel. Real
	// deployments route this through the mail pipeline; the notifier is the
	// dev/ops visible fallback.
	NotifyOTP(email, code, otpType string)
}

// Noop is the Notifier used when no channel is configured.
type Noop struct{}

func (Noop) NotifyClockEvent(string, string, string) {}

func (Noop) NotifyOTP(string, string, string) {}

var _ Notifier = (*Noop)(nil)
