package transport

import (
	"fmt"
	"net"
	"strings"
	"time"
)

const maxDatagramSize = 1024

// UDPLink receives one command token per datagram on a local UDP port.
type UDPLink struct {
	conn *net.UDPConn
	buf  []byte
}

// ListenUDP binds the command port. A bind failure is fatal to the caller;
// the harness deliberately refuses to fly without a working command link.
func ListenUDP(port int) (*UDPLink, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, fmt.Errorf("binding command port %d: %w", port, err)
	}

	return &UDPLink{
		conn: conn,
		buf:  make([]byte, maxDatagramSize),
	}, nil
}

// Addr returns the bound local address.
func (l *UDPLink) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// PollCommand performs a non-blocking read of the next datagram and returns
// its payload trimmed to a single token. Read errors, including the
// immediate deadline expiry that makes the read non-blocking, surface as
// "no command".
func (l *UDPLink) PollCommand() (string, bool) {
	if err := l.conn.SetReadDeadline(time.Now()); err != nil {
		return "", false
	}

	n, _, err := l.conn.ReadFromUDP(l.buf)
	if err != nil || n == 0 {
		return "", false
	}

	token := strings.TrimSpace(string(l.buf[:n]))
	if token == "" {
		return "", false
	}
	return token, true
}

func (l *UDPLink) Close() error {
	return l.conn.Close()
}
