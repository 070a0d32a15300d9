// Package protocol defines the JSON envelope exchanged over the room data
// channel. Historical clients disagreed on the payload field name ("message"
// vs "content"); we accept both on the way in and always write "message".
package protocol

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"
)

// MessageType identifies room payload variants.
type MessageType string

const (
	// TypeChat marks conversational text payloads. All other types are
	// ignored by the bot (presence pings, typing indicators, and so on).
	TypeChat MessageType = "chat"
)

// ChatMessage is the outbound envelope published to the room.
type ChatMessage struct {
	Type      MessageType `json:"type"`
	Message   string      `json:"message"`
	Sender    string      `json:"sender"`
	Timestamp int64       `json:"timestamp"`
}

// NewChatMessage builds a chat envelope stamped with the current time in
// epoch milliseconds.
func NewChatMessage(sender, text string) ChatMessage {
	return ChatMessage{
		Type:      TypeChat,
		Message:   text,
		Sender:    sender,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Encode serializes the envelope to UTF-8 JSON bytes.
func (m ChatMessage) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Inbound is a decoded participant payload ready for processing.
type Inbound struct {
	Content string
	Sender  string
}

type inboundEnvelope struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
	Content string      `json:"content"`
	Sender  string      `json:"sender"`
}

// ParseInbound decodes a raw data-channel payload. It returns ok=false for
// payloads the bot should silently ignore: non-chat types, empty content, and
// bytes that are not valid UTF-8 text.
//
// Payloads that are not JSON at all are passed through verbatim as plain text
// with the sender taken from the transport-level identity.
func ParseInbound(raw []byte, transportSender string) (Inbound, bool) {
	if !utf8.Valid(raw) {
		return Inbound{}, false
	}

	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		text := strings.TrimSpace(string(raw))
		if text == "" {
			return Inbound{}, false
		}
		return Inbound{Content: text, Sender: transportSender}, true
	}

	if env.Type != TypeChat {
		return Inbound{}, false
	}

	content := env.Message
	if content == "" {
		content = env.Content
	}
	if strings.TrimSpace(content) == "" {
		return Inbound{}, false
	}

	sender := env.Sender
	if sender == "" {
		sender = transportSender
	}
	return Inbound{Content: content, Sender: sender}, true
}
