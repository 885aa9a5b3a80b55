//go:build linux

package companion

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/Enginex0/nomount-vfs/internal/errx"
)

func peerCred(conn net.Conn) (Cred, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return Cred{}, ErrPeerCred
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return Cred{}, errx.Wrap(ErrPeerCred, err)
	}

	var (
		ucred   *unix.Ucred
		credErr error
	)
	if err := raw.Control(func(fd uintptr) {
		ucred, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return Cred{}, errx.Wrap(ErrPeerCred, err)
	}
	if credErr != nil {
		return Cred{}, errx.Wrap(ErrPeerCred, credErr)
	}
	return Cred{PID: ucred.Pid, UID: ucred.Uid, GID: ucred.Gid}, nil
}
