package mqtt

import (
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/eclipse/paho.mqtt.golang/packets"
	"github.com/stretchr/testify/assert"
)

func TestMapSessionError(t *testing.T) {
	var auth *InvalidAuthError
	err := MapSessionError(fmt.Errorf("connack: %w", packets.ErrorRefusedBadUsernameOrPassword))
	assert.ErrorAs(t, err, &auth)

	err = MapSessionError(fmt.Errorf("connack: %w", packets.ErrorRefusedNotAuthorised))
	assert.ErrorAs(t, err, &auth)

	var tlsErr *TlsError
	err = MapSessionError(fmt.Errorf("handshake: %w", x509.UnknownAuthorityError{}))
	assert.ErrorAs(t, err, &tlsErr)

	var timeout *TimeoutError
	err = MapSessionError(fmt.Errorf("dial: %w", os.ErrDeadlineExceeded))
	assert.ErrorAs(t, err, &timeout)

	var cannot *CannotConnectError
	err = MapSessionError(errors.New("connection refused"))
	assert.ErrorAs(t, err, &cannot)

	assert.NoError(t, MapSessionError(nil))
}
