package signal

import (
	"time"

	"github.com/gorilla/websocket"
)

// armKeepalive applies the read limit and, when pings are enabled, a read
// deadline that every pong pushes forward.
func (ctl *SignalWSController) armKeepalive(c *WsSignalConn) {
	if ctl.opts.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.opts.ReadLimit)
	}
	if ctl.opts.PingPeriod <= 0 {
		return
	}
	wait := 2 * ctl.opts.PingPeriod
	_ = c.conn.SetReadDeadline(time.Now().Add(wait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wait))
	})
}

func (ctl *SignalWSController) writePing(c *WsSignalConn) error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.opts.WriteTimeout))
}

// pingTicker never fires when pings are disabled.
func (ctl *SignalWSController) pingTicker() *time.Ticker {
	if ctl.opts.PingPeriod <= 0 {
		t := time.NewTicker(time.Hour)
		t.Stop()
		return t
	}
	return time.NewTicker(ctl.opts.PingPeriod)
}
