package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Speshl/gorrc_drive/internal/models"
	socketio "github.com/googollee/go-socket.io"
	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"
)

const (
	PingInterval = 1 * time.Second
	HudInterval  = 33 * time.Millisecond //30hz
)

// dataSender is the part of a webrtc data channel the hud and ping loop uses.
type dataSender interface {
	Send([]byte) error
	SendText(string) error
}

type Connection struct {
	Socket         socketio.Conn
	PeerConnection *webrtc.PeerConnection
	Ctx            context.Context
	CtxCancel      context.CancelFunc
	CommandChannel chan models.ControlState
	HudChannel     chan models.Hud

	lock       sync.RWMutex
	hudOutput  dataSender
	pingOutput dataSender
	PingInput  chan int64
}

func NewConnection(ctx context.Context, socketConn socketio.Conn, seat *models.Seat, peerConn *webrtc.PeerConnection) *Connection {
	zap.S().Infof("creating user connection for seat %d", seat.Index)
	connCtx, cancel := context.WithCancel(ctx)
	return &Connection{
		Socket:         socketConn,
		PeerConnection: peerConn,
		Ctx:            connCtx,
		CtxCancel:      cancel,
		CommandChannel: seat.CommandChannel,
		HudChannel:     seat.HudChannel,
		PingInput:      make(chan int64, 10),
	}
}

func (c *Connection) Disconnect() {
	zap.S().Info("user disconnecting")
	c.CtxCancel()
	if c.PeerConnection != nil {
		err := c.PeerConnection.Close()
		if err != nil {
			zap.S().Warnf("failed closing peer connection: %s", err)
		}
	}
}

func (c *Connection) RegisterHandlers() {
	zap.S().Info("start event listeners")
	// Set the handler for ICE connection state
	// This will notify you when the peer has connected/disconnected
	c.PeerConnection.OnICEConnectionStateChange(c.onICEConnectionStateChange)

	// Handle ICE candidate messages from the client
	c.PeerConnection.OnICECandidate(c.onICECandidate)

	c.PeerConnection.OnDataChannel(c.onDataChannel)

	go c.sendLoop()
}

func (c *Connection) setOutput(label string, out dataSender) {
	c.lock.Lock()
	defer c.lock.Unlock()
	switch label {
	case "hud":
		c.hudOutput = out
	case "ping":
		c.pingOutput = out
	}
}

func (c *Connection) outputs() (dataSender, dataSender) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.hudOutput, c.pingOutput
}

// sendLoop pings the user every second and forwards the newest hud at 30hz
// with the last round trip time appended.
func (c *Connection) sendLoop() {
	pingTicker := time.NewTicker(PingInterval)
	defer pingTicker.Stop()
	hudTicker := time.NewTicker(HudInterval)
	defer hudTicker.Stop()

	sent := true
	hudToSend := models.Hud{}
	lastPing := int64(0)
	for {
		select {
		case <-c.Ctx.Done():
			zap.S().Infof("stopping user updater: %s", c.Ctx.Err().Error())
			return
		case hud, ok := <-c.HudChannel:
			if !ok {
				zap.S().Info("hud channel closed")
				return
			}
			hudToSend = hud
			sent = false
		case <-pingTicker.C:
			_, pingOutput := c.outputs()
			if pingOutput != nil {
				err := c.sendPing(pingOutput, time.Now())
				if err != nil {
					zap.S().Warnf("failed sending ping: %s", err)
				}
			}
		case receivedPing, ok := <-c.PingInput:
			if !ok {
				zap.S().Info("ping channel closed")
				return
			}
			lastPing = receivedPing
		case <-hudTicker.C:
			hudOutput, _ := c.outputs()
			if !sent && hudOutput != nil {
				sent = true
				err := c.sendHud(hudOutput, hudToSend, lastPing)
				if err != nil {
					zap.S().Warnf("failed sending hud: %s", err)
				}
			}
		}
	}
}

func (c *Connection) sendPing(out dataSender, now time.Time) error {
	data, err := json.Marshal(models.Ping{
		TimeStamp: now.UnixMilli(),
		Source:    PingSourceName,
	})
	if err != nil {
		return fmt.Errorf("failed marshalling ping: %w", err)
	}
	return out.Send(data)
}

func (c *Connection) sendHud(out dataSender, hud models.Hud, lastPing int64) error {
	lines := make([]string, len(hud.Lines))
	copy(lines, hud.Lines)
	if len(lines) > 0 {
		lines[0] = fmt.Sprintf("%s | Ping:%dms", lines[0], lastPing)
	}

	encodedMsg, err := encode(models.Hud{Lines: lines})
	if err != nil {
		return err
	}
	return out.SendText(encodedMsg)
}
