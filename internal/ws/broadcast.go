package ws

import (
	"context"

	"github.com/rs/zerolog/log"
)

// MembershipProvider resolves the current member set of a chat. It is queried
// fresh on every broadcast; the delivery layer never caches membership.
type MembershipProvider interface {
	Members(ctx context.Context, chatID int64) ([]int64, error)
}

// SenderDirectory resolves a sender's display attributes for the push payload.
type SenderDirectory interface {
	DisplayName(ctx context.Context, userID int64) (string, error)
}

// Notifier fans a committed chat message out to the live connections of every
// chat member. Delivery is fire-and-forget and at-most-once: members with no
// live connection are skipped, one member's failure never affects another, and
// nothing is queued or retried.
type Notifier struct {
	registry *Registry
	members  MembershipProvider
	senders  SenderDirectory
}

// NewNotifier wires the broadcast path.
func NewNotifier(registry *Registry, members MembershipProvider, senders SenderDirectory) *Notifier {
	return &Notifier{registry: registry, members: members, senders: senders}
}

// MessageCommitted must be invoked exactly once per durably stored chat
// message, immediately after the commit. It builds a per-recipient view of the
// event — the sender's own connections see direction "sent", everyone else
// "received" — and pushes it through the registry.
func (n *Notifier) MessageCommitted(ctx context.Context, msg Message) {
	members, err := n.members.Members(ctx, msg.ChatID)
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", msg.ChatID).Msg("broadcast skipped, membership lookup failed")
		return
	}

	senderName, err := n.senders.DisplayName(ctx, msg.SenderID)
	if err != nil {
		log.Warn().Err(err).Int64("sender_id", msg.SenderID).Msg("broadcast skipped, sender lookup failed")
		return
	}

	broadcastsTotal.Inc()

	for _, member := range members {
		direction := DirectionReceived
		if member == msg.SenderID {
			direction = DirectionSent
		}
		n.registry.SendToUser(member, messageEnvelope(msg, senderName, direction))
	}
}
