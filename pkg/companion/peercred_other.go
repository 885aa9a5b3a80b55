//go:build !linux

package companion

import "net"

func peerCred(net.Conn) (Cred, error) {
	return Cred{}, ErrPeerCred
}
