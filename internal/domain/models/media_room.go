package models

import "github.com/pion/webrtc/v4"

// MediaRoom - данные для подключения к внешнему медиа-серверу после call:accepted
type MediaRoom struct {
	ConversationID string             `json:"conversationId"`
	CallID         string             `json:"callId"`
	RoomName       string             `json:"roomName"`
	Token          string             `json:"-"`
	Identity       string             `json:"identity"`
	ICEServers     []webrtc.ICEServer `json:"iceServers"`
}
