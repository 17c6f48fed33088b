package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/huddlekit/huddle/internal/app"
	"github.com/huddlekit/huddle/internal/domain"
)

func (ctl *Controller) handleConnected(
	handle app.HandleID,
	conn *WsSignalConn,
	data []byte,
) {
	type connectedPayload struct {
		Type     string `json:"type"`
		UserID   string `json:"userId"`
		FullName string `json:"fullName"`
	}
	var p connectedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad user-connected payload")
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "bad_payload",
		})
		return
	}
	if p.UserID == "" || p.FullName == "" {
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "missing userId or fullName",
		})
		return
	}

	log.Info().Str("module", "signal").Str("handle", string(handle)).Str("user", p.UserID).Str("name", p.FullName).Msg("user connected")
	ctl.Hub.Register(handle, conn, domain.IdentityID(p.UserID), p.FullName)
}

func (ctl *Controller) handleMediaState(
	handle app.HandleID,
	data []byte,
) {
	type mediaPayload struct {
		Type     string `json:"type"`
		CameraOn bool   `json:"cameraOn"`
		AudioOn  bool   `json:"audioOn"`
	}
	var p mediaPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad media-state payload")
		return
	}
	// Unregistered handle is a no-op inside the hub.
	ctl.Hub.UpdateMedia(handle, p.CameraOn, p.AudioOn)
}
