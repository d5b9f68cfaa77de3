package piltc

/*------------------------------------------------------------------
 *
 * Purpose:   	Per-second wall-clock broadcast for downstream
 *		receivers.
 *
 * Description:	One UDP datagram per second, sent from the timing
 *		loop at each second boundary:
 *
 *		    TIMESYNC:<ns-since-epoch>:<HH>.<MM>.<SS>.00
 *
 *		ASCII, one line, no newline.  The time fields are
 *		local time; the frame field is always 00 because the
 *		boundary is frame zero by definition.
 *
 *		The socket is created once at startup with
 *		SO_BROADCAST set so the configured destination may be
 *		a broadcast address.  A failed send is logged and the
 *		next second is attempted anyway.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
	"golang.org/x/sys/unix"
)

/* What the timing loop sees; the tests substitute a recorder. */
type announce_sink interface {
	announce(sec int64)
}

type announcer struct {
	conn net.PacketConn
	dst  *net.UDPAddr
	log  *log.Logger
}

func announce_open(cfg *Config, logger *log.Logger) (*announcer, error) {
	var lc = net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			var ctrlErr = c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
			})
			if ctrlErr != nil {
				return ctrlErr
			}
			return sockErr
		},
	}

	var conn, listenErr = lc.ListenPacket(context.Background(), "udp4", ":0")
	if listenErr != nil {
		return nil, fmt.Errorf("opening announce socket: %w", listenErr)
	}

	var dst, resolveErr = net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", cfg.BroadcastAddr, cfg.BroadcastPort))
	if resolveErr != nil {
		conn.Close() //nolint:errcheck
		return nil, fmt.Errorf("resolving announce destination: %w", resolveErr)
	}

	return &announcer{conn: conn, dst: dst, log: logger}, nil
}

func (a *announcer) announce(sec int64) {
	var _, sendErr = a.conn.WriteTo(announce_payload(sec), a.dst)
	if sendErr != nil {
		a.log.Error("announce send failed", "dst", a.dst, "err", sendErr)
	}
}

func (a *announcer) close() error {
	return a.conn.Close()
}

func announce_payload(sec int64) []byte {
	var hms, _ = strftime.Format("%H.%M.%S", time.Unix(sec, 0))

	return []byte(fmt.Sprintf("TIMESYNC:%d:%s.00", sec*1_000_000_000, hms))
}
