package api

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rs/zerolog/log"

	"dangeond/internal/ws"
)

// chatMessageEvent is relayed over the bus so that members connected to other
// serving instances still receive live pushes. Origin names the publishing
// instance; subscribers drop their own events since those were already
// delivered locally at commit time.
type chatMessageEvent struct {
	Origin  string     `json:"origin"`
	Message ws.Message `json:"message"`
}

func (a *API) publishMessage(ctx context.Context, msg ws.Message) {
	if a.store.Bus == nil {
		return
	}
	event := chatMessageEvent{Origin: a.instanceID.String(), Message: msg}
	if err := a.store.Bus.Publish(ctx, messageTopic, event); err != nil {
		log.Warn().Err(err).Int64("chat_id", msg.ChatID).Msg("message relay publish failed")
	}
}

// StartRelay subscribes to committed-message events from other instances and
// feeds them into the local notifier. Relay delivery is best effort.
func (a *API) StartRelay(ctx context.Context) (io.Closer, error) {
	if a.store.Bus == nil {
		return nil, nil
	}

	durable := "dangeond-relay-" + a.instanceID.String()
	return a.store.Bus.Subscribe(ctx, messageTopic, durable, func(ctx context.Context, data []byte) error {
		var event chatMessageEvent
		if err := json.Unmarshal(data, &event); err != nil {
			log.Warn().Err(err).Msg("dropping malformed relay event")
			return nil
		}
		if event.Origin == a.instanceID.String() {
			return nil
		}
		a.notifier.MessageCommitted(ctx, event.Message)
		return nil
	})
}
