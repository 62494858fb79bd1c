package models

import (
	"github.com/google/uuid"
	"github.com/pion/webrtc/v3"
)

const ClientAxesCount = 10

type ConnectReq struct {
	Key       string `json:"key"`
	Password  string `json:"password"`
	SeatCount int    `json:"seat_count"`
}

type ConnectResp struct {
	Car   Car   `json:"car"`
	Track Track `json:"track"`
}
type Car struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ShortName string    `json:"short_name"`
	Type      string    `json:"type"`
}

type Track struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ShortName string    `json:"short_name"`
	Type      string    `json:"type"`
}

type IceCandidate struct {
	Candidate    webrtc.ICECandidateInit `json:"candidate"`
	CarShortName string                  `json:"car_name"`
	SeatNum      int                     `json:"seat_number"`
	UserId       uuid.UUID               `json:"user_id"`
}

type Offer struct {
	Offer        webrtc.SessionDescription `json:"offer"`
	CarShortName string                    `json:"car_name"`
	SeatNumber   int                       `json:"seat_number"`
	UserId       uuid.UUID                 `json:"user_id"`
}

type Answer struct {
	Answer     *webrtc.SessionDescription `json:"answer"`
	SeatNumber int                        `json:"seat_number"`
}

type ControlState struct {
	Axes      []float64 `json:"axes"`
	BitButton uint32    `json:"bit_buttons"`
	TimeStamp int64     `json:"time_stamp"`
	Buttons   []bool    `json:"-"`
}

// Axis returns the axis value at index, or 0 when the client sent fewer axes.
func (c ControlState) Axis(index int) float64 {
	if index < 0 || index >= len(c.Axes) {
		return 0
	}
	return c.Axes[index]
}

// Button reports the parsed button at index, false when out of range.
func (c ControlState) Button(index int) bool {
	if index < 0 || index >= len(c.Buttons) {
		return false
	}
	return c.Buttons[index]
}

type Hud struct {
	Lines []string `json:"lines"`
}

type Ping struct {
	Source    string `json:"source"`
	TimeStamp int64  `json:"time_stamp"`
}

// Seat is one operator position on the vehicle. Commands flow in from the
// peer connection and HUD frames flow back out.
type Seat struct {
	Index          int
	CommandChannel chan ControlState
	HudChannel     chan Hud
}

func NewSeat(index int, bufferSize int) Seat {
	return Seat{
		Index:          index,
		CommandChannel: make(chan ControlState, bufferSize),
		HudChannel:     make(chan Hud, bufferSize),
	}
}
