package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/huddlekit/huddle/internal/app"
	"github.com/huddlekit/huddle/internal/domain"
)

// relay forwards a point-to-point event as-is under the same type.
// Used for offer, answer and ice-candidate: the hub never looks inside the
// negotiation payload, it only swaps the addressing fields.
func (ctl *Controller) relay(event string, handle app.HandleID, data []byte) {
	ctl.relayAs(event, handle, data)
}

// relayAs resolves toUserId, strips it, substitutes the sender's own
// identity as fromUserId and forwards the rest of the payload untouched.
// A sender without a session forwards with fromUserId absent; the receiving
// endpoint may treat that as a protocol violation.
func (ctl *Controller) relayAs(event string, handle app.HandleID, data []byte) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("type", event).Msg("bad relay payload")
		return
	}
	to, _ := fields["toUserId"].(string)
	if to == "" {
		log.Warn().Str("module", "signal").Str("type", event).Str("handle", string(handle)).Msg("relay without toUserId")
		return
	}
	delete(fields, "toUserId")
	fields["type"] = event
	if sender, ok := ctl.Hub.Session(handle); ok {
		fields["fromUserId"] = string(sender.IdentityID)
	} else {
		delete(fields, "fromUserId")
		log.Warn().Str("module", "signal").Str("type", event).Str("handle", string(handle)).Msg("relay from unregistered sender")
	}
	ctl.Hub.Forward(domain.IdentityID(to), fields)
}
