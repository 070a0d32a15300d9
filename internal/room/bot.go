package room

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/antoniostano/memora/internal/observability"
	"github.com/antoniostano/memora/internal/protocol"
)

// Responder turns one inbound message into reply text. It must not block
// forever and must always return something sendable.
type Responder interface {
	Process(ctx context.Context, content, sender string) string
}

// Bot wires a room client to a responder: it decodes and filters inbound
// payloads at the transport boundary, hands chat messages to the responder,
// and publishes replies back to the room.
type Bot struct {
	client    *Client
	responder Responder
	identity  string
	metrics   *observability.Metrics
}

func NewBot(client *Client, responder Responder, identity string, metrics *observability.Metrics) *Bot {
	b := &Bot{
		client:    client,
		responder: responder,
		identity:  identity,
		metrics:   metrics,
	}
	client.SetHandlers(Handlers{
		Data:              b.handleData,
		ParticipantJoined: b.handleParticipantJoined,
		ParticipantLeft:   b.handleParticipantLeft,
	})
	return b
}

// Run joins the room, announces the bot, and serves until the context is
// canceled or the connection drops.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.client.Dial(ctx); err != nil {
		return err
	}
	defer b.client.Close()

	slog.Info("joined room", "identity", b.identity)
	b.publishChat(ctx, "👋 AI Assistant has joined the room and is ready to help!")

	return b.client.Listen(ctx)
}

// handleData runs on the read loop; each accepted message is processed in
// its own goroutine so a slow backend never stalls the room feed. No
// ordering is guaranteed between concurrently processed messages.
func (b *Bot) handleData(raw []byte, sender string) {
	in, ok := protocol.ParseInbound(raw, sender)
	if !ok {
		b.metrics.RoomMessages.WithLabelValues("inbound", "ignored").Inc()
		return
	}
	// Never respond to our own published messages.
	if in.Sender == b.identity {
		b.metrics.RoomMessages.WithLabelValues("inbound", "self").Inc()
		return
	}
	b.metrics.RoomMessages.WithLabelValues("inbound", "chat").Inc()

	go func() {
		reply := b.responder.Process(context.Background(), in.Content, in.Sender)
		b.publishChat(context.Background(), reply)
	}()
}

func (b *Bot) handleParticipantJoined(identity string) {
	slog.Info("participant joined", "identity", identity)
	if identity == "" || identity == b.identity {
		return
	}
	b.publishChat(context.Background(),
		fmt.Sprintf("Welcome to the chat, %s! I'm your AI assistant. Feel free to ask me anything!", identity))
}

func (b *Bot) handleParticipantLeft(identity string) {
	slog.Info("participant left", "identity", identity)
}

func (b *Bot) publishChat(ctx context.Context, text string) {
	payload, err := protocol.NewChatMessage(b.identity, text).Encode()
	if err != nil {
		slog.Error("encode chat message", "err", err)
		return
	}
	if err := b.client.Publish(ctx, payload); err != nil {
		slog.Error("publish chat message", "err", err)
	}
}
