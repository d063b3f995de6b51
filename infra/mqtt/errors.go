package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"os"

	"github.com/eclipse/paho.mqtt.golang/packets"
)

// Broker-session errors. The setup flow branches on these to show the right
// remediation, so the raw paho error is classified once, here.

// CannotConnectError wraps transport-level connection failures.
type CannotConnectError struct{ Err error }

func (e *CannotConnectError) Error() string { return "cannot connect to broker: " + e.Err.Error() }
func (e *CannotConnectError) Unwrap() error { return e.Err }

// InvalidAuthError wraps credential rejections.
type InvalidAuthError struct{ Err error }

func (e *InvalidAuthError) Error() string { return "broker rejected credentials: " + e.Err.Error() }
func (e *InvalidAuthError) Unwrap() error { return e.Err }

// TimeoutError wraps connection deadline expiry.
type TimeoutError struct{ Err error }

func (e *TimeoutError) Error() string { return "broker connection timed out: " + e.Err.Error() }
func (e *TimeoutError) Unwrap() error { return e.Err }

// TlsError wraps certificate and handshake failures.
type TlsError struct{ Err error }

func (e *TlsError) Error() string { return "TLS error: " + e.Err.Error() }
func (e *TlsError) Unwrap() error { return e.Err }

// MapSessionError classifies a paho connect error into the session error
// taxonomy. nil passes through.
func MapSessionError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, packets.ErrorRefusedBadUsernameOrPassword) ||
		errors.Is(err, packets.ErrorRefusedNotAuthorised) {
		return &InvalidAuthError{Err: err}
	}

	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	var certInvalid x509.CertificateInvalidError
	var recordErr tls.RecordHeaderError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) ||
		errors.As(err, &hostErr) || errors.As(err, &certInvalid) ||
		errors.As(err, &recordErr) {
		return &TlsError{Err: err}
	}

	var netErr net.Error
	if errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{Err: err}
	}

	return &CannotConnectError{Err: err}
}
