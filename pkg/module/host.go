package module

import (
	"io"
	"net"
	"slices"
	"time"

	"github.com/Enginex0/nomount-vfs/internal/errx"
)

// SocketHost connects to a companion listening on a unix socket. It stands
// in for an injection framework when the controller runs outside one.
type SocketHost struct {
	SocketPath string
	// Timeout bounds the dial and the whole read. Zero means no limit.
	Timeout time.Duration

	options []Option
}

func (h *SocketHost) ConnectCompanion() (io.ReadCloser, error) {
	conn, err := net.DialTimeout("unix", h.SocketPath, h.Timeout)
	if err != nil {
		return nil, errx.With(ErrConnect, " %s: %w", h.SocketPath, err)
	}
	if h.Timeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(h.Timeout))
	}
	return conn, nil
}

func (h *SocketHost) SetOption(o Option) {
	h.options = append(h.options, o)
}

// Options lists the options the module requested, in order.
func (h *SocketHost) Options() []Option {
	return slices.Clone(h.options)
}
