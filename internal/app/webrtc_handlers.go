package app

import (
	"encoding/json"
	"time"

	"github.com/Speshl/gorrc_drive/internal/models"
	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"
)

const PingSourceName = "car"

func (c *Connection) onICEConnectionStateChange(connectionState webrtc.ICEConnectionState) {
	zap.S().Infof("connection state has changed: %s", connectionState.String())
	if connectionState == webrtc.ICEConnectionStateFailed || connectionState == webrtc.ICEConnectionStateClosed {
		c.CtxCancel()
	}
}

func (c *Connection) onICECandidate(candidate *webrtc.ICECandidate) {
	if candidate != nil {
		zap.S().Debugf("received ICE candidate from client: %s", candidate.String())
	}
}

func (c *Connection) onDataChannel(d *webrtc.DataChannel) {
	zap.S().Infof("new data channel: %s", d.Label())

	// Register channel opening handler
	d.OnOpen(func() {
		zap.S().Infof("data channel open: %s", d.Label())
		c.setOutput(d.Label(), d)
	})

	// Register text message handling
	switch d.Label() {
	case "command":
		d.OnMessage(func(msg webrtc.DataChannelMessage) { c.onCommandHandler(msg.Data) })
	case "ping":
		d.OnMessage(func(msg webrtc.DataChannelMessage) { c.onPingHandler(msg.Data, time.Now()) })
	case "hud":
	default:
		zap.S().Warnf("received message on unsupported channel: %s", d.Label())
	}
}

func (c *Connection) onCommandHandler(data []byte) {
	state := models.ControlState{}
	err := json.Unmarshal(data, &state)
	if err != nil {
		zap.S().Warnf("failed unmarshalling data channel msg: %s", data)
		return
	}

	select {
	case c.CommandChannel <- state:
	default:
		zap.S().Debug("command channel full, dropping command")
	}
}

// onPingHandler records the round trip of pings this car sent and echoes the
// user's own pings back.
func (c *Connection) onPingHandler(data []byte, now time.Time) {
	ping := models.Ping{}
	err := json.Unmarshal(data, &ping)
	if err != nil {
		zap.S().Warnf("failed unmarshalling data channel msg: %s", data)
		return
	}

	if ping.Source == PingSourceName {
		roundTripTime := now.UnixMilli() - ping.TimeStamp
		zap.S().Debugf("ping: %d ms", roundTripTime)
		select {
		case c.PingInput <- roundTripTime:
		default:
		}
		return
	}

	_, pingOutput := c.outputs()
	if pingOutput != nil {
		err = pingOutput.Send(data)
		if err != nil {
			zap.S().Warnf("failed echoing ping: %s", err)
		}
	}
}
