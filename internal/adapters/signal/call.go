package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/huddlekit/huddle/internal/app"
	"github.com/huddlekit/huddle/internal/domain"
)

func (ctl *Controller) handleCallRequest(
	handle app.HandleID,
	data []byte,
) {
	type callPayload struct {
		Type     string `json:"type"`
		ToUserID string `json:"toUserId"`
	}
	var p callPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad call-request payload")
		return
	}
	if p.ToUserID == "" {
		log.Warn().Str("module", "signal").Str("handle", string(handle)).Msg("call-request without toUserId")
		return
	}

	// The caller's identity comes from its own session, never from the
	// client-supplied fields.
	out := map[string]any{"type": "incoming-private-call"}
	if sender, ok := ctl.Hub.Session(handle); ok {
		out["fromUserId"] = string(sender.IdentityID)
		out["fromName"] = sender.DisplayName
	} else {
		log.Warn().Str("module", "signal").Str("handle", string(handle)).Msg("call-request from unregistered sender")
	}
	ctl.Hub.Forward(domain.IdentityID(p.ToUserID), out)
}

func (ctl *Controller) handleCallResponse(
	handle app.HandleID,
	data []byte,
) {
	// The response body is opaque to the hub: everything the callee sent
	// comes back to the caller, only retargeted.
	ctl.relayAs("private-call-accepted", handle, data)
}
