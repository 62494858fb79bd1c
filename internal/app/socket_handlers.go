package app

import (
	"fmt"

	"github.com/Speshl/gorrc_drive/internal/models"
	socketio "github.com/googollee/go-socket.io"
	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"
)

func (a *App) peerConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: []string{a.cfg.ServerCfg.StunServer}},
		},
	}
}

func (a *App) seat(seatNumber int) (*models.Seat, error) {
	if seatNumber < 0 || seatNumber >= len(a.seats) {
		return nil, fmt.Errorf("unsupported seat number: %d", seatNumber)
	}
	return &a.seats[seatNumber], nil
}

func (a *App) onOffer(socketConn socketio.Conn, msg string) {
	offer := models.Offer{}
	err := decode(msg, &offer)
	if err != nil {
		zap.S().Warnf("offer from %s failed unmarshaling: %s", socketConn.ID(), err)
		return
	}

	seat, err := a.seat(offer.SeatNumber)
	if err != nil {
		zap.S().Warnf("offer from %s rejected: %s", socketConn.ID(), err)
		return
	}

	peerConn, err := webrtc.NewPeerConnection(a.peerConfig())
	if err != nil {
		zap.S().Errorf("failed creating peer connection for seat %d: %s", offer.SeatNumber, err)
		return
	}

	conn := NewConnection(a.ctx, socketConn, seat, peerConn)
	conn.RegisterHandlers()
	a.setConnection(offer.SeatNumber, conn)

	// Set the received offer as the remote description
	err = peerConn.SetRemoteDescription(offer.Offer)
	if err != nil {
		zap.S().Errorf("failed to set remote description: %s", err)
		return
	}

	answer, err := peerConn.CreateAnswer(nil)
	if err != nil {
		zap.S().Errorf("failed to create answer: %s", err)
		return
	}

	// Create channel that is blocked until ICE Gathering is complete
	gatherComplete := webrtc.GatheringCompletePromise(peerConn)

	// Sets the LocalDescription, and starts our UDP listeners
	err = peerConn.SetLocalDescription(answer)
	if err != nil {
		zap.S().Errorf("failed to set local description: %s", err)
		return
	}

	// Block until ICE Gathering is complete, disabling trickle ICE
	<-gatherComplete

	encodedAnswer, err := encode(models.Answer{
		Answer:     peerConn.LocalDescription(),
		SeatNumber: offer.SeatNumber,
	})
	if err != nil {
		zap.S().Errorf("failed encoding answer: %s", err)
		return
	}
	zap.S().Infof("sending answer for seat %d", offer.SeatNumber)
	a.client.Emit("answer", encodedAnswer)
}

func (a *App) onICECandidate(socketConn socketio.Conn, msg string) {
	candidate := models.IceCandidate{}
	err := decode(msg, &candidate)
	if err != nil {
		zap.S().Warnf("ice candidate from %s failed unmarshaling: %s", socketConn.ID(), err)
		return
	}

	a.connLock.Lock()
	conn, ok := a.userConns[candidate.SeatNum]
	a.connLock.Unlock()
	if !ok {
		zap.S().Warnf("ice candidate for seat %d with no connection", candidate.SeatNum)
		return
	}

	err = conn.PeerConnection.AddICECandidate(candidate.Candidate)
	if err != nil {
		zap.S().Warnf("failed adding ice candidate for seat %d: %s", candidate.SeatNum, err)
	}
}

func (a *App) onRegisterSuccess(socketConn socketio.Conn, msg string) {
	decodedMsg := models.ConnectResp{}
	err := decode(msg, &decodedMsg)
	if err != nil {
		zap.S().Warnf("register success from %s failed unmarshaling: %s", socketConn.ID(), err)
		return
	}

	a.carInfo = decodedMsg.Car
	a.trackInfo = decodedMsg.Track
	zap.S().Infof("car connected as %s(%s) @ %s(%s) with %d seats available",
		a.carInfo.Name, a.carInfo.ShortName, a.trackInfo.Name, a.trackInfo.ShortName, len(a.seats))
}
