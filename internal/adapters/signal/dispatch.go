package signal

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hearings/internal/app/hub"
	"github.com/dkeye/Hearings/internal/core"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type sendMessageRequest struct {
	ConferenceID uuid.UUID `json:"conference_id"`
	Message      string    `json:"message"`
	To           string    `json:"to"`
	MessageUUID  uuid.UUID `json:"message_uuid"`
}

type heartbeatRequest struct {
	ConferenceID  uuid.UUID      `json:"conference_id"`
	ParticipantID uuid.UUID      `json:"participant_id"`
	Heartbeat     core.Heartbeat `json:"heartbeat"`
}

type transferRequest struct {
	ConferenceID  uuid.UUID             `json:"conference_id"`
	ParticipantID uuid.UUID             `json:"participant_id"`
	Direction     hub.TransferDirection `json:"transfer_direction"`
}

type mediaStatusRequest struct {
	ConferenceID  uuid.UUID       `json:"conference_id"`
	ParticipantID uuid.UUID       `json:"participant_id"`
	MediaStatus   hub.MediaStatus `json:"media_status"`
}

// participantFlagRequest covers every call that carries a single boolean
// about one participant.
type participantFlagRequest struct {
	ConferenceID  uuid.UUID `json:"conference_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	IsRemoteMuted bool      `json:"is_remote_muted"`
	HasHandRaised bool      `json:"has_hand_raised"`
	Muted         bool      `json:"muted"`
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, errors.New("empty payload")
	}
	err := json.Unmarshal(raw, &v)
	return v, err
}

func (ctl *HubWSController) dispatch(ctx context.Context, caller hub.Caller, c core.SignalConnection, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, "bad_json")
		return
	}
	if env.Type == "ping" {
		ctl.sendJSON(c, map[string]any{"type": "pong"})
		return
	}
	if !ctl.Limiter.Allow(string(caller.ConnID)) {
		log.Warn().Str("module", "signal").Str("conn", string(caller.ConnID)).Str("type", env.Type).Msg("rate limited")
		ctl.sendError(c, "rate_limited")
		return
	}

	var err, callErr error
	switch env.Type {
	case "SendMessage":
		var p sendMessageRequest
		if p, err = decode[sendMessageRequest](env.Payload); err == nil {
			ctl.Hub.SendMessage(ctx, caller, p.ConferenceID, p.Message, p.To, p.MessageUUID)
		}
	case "SendHeartbeat":
		var p heartbeatRequest
		if p, err = decode[heartbeatRequest](env.Payload); err == nil {
			ctl.Hub.SendHeartbeat(ctx, caller, p.ConferenceID, p.ParticipantID, p.Heartbeat)
		}
	case "SendTransferRequest":
		var p transferRequest
		if p, err = decode[transferRequest](env.Payload); err == nil {
			ctl.Hub.SendTransferRequest(ctx, caller, p.ConferenceID, p.ParticipantID, p.Direction)
		}
	case "SendMediaDeviceStatus":
		var p mediaStatusRequest
		if p, err = decode[mediaStatusRequest](env.Payload); err == nil {
			ctl.Hub.SendMediaDeviceStatus(ctx, caller, p.ConferenceID, p.ParticipantID, p.MediaStatus)
		}
	case "UpdateParticipantRemoteMuteStatus":
		var p participantFlagRequest
		if p, err = decode[participantFlagRequest](env.Payload); err == nil {
			ctl.Hub.UpdateParticipantRemoteMuteStatus(ctx, caller, p.ConferenceID, p.ParticipantID, p.IsRemoteMuted)
		}
	case "UpdateParticipantHandStatus":
		var p participantFlagRequest
		if p, err = decode[participantFlagRequest](env.Payload); err == nil {
			ctl.Hub.UpdateParticipantHandStatus(ctx, caller, p.ConferenceID, p.ParticipantID, p.HasHandRaised)
		}
	case "ToggleParticipantLocalMute":
		var p participantFlagRequest
		if p, err = decode[participantFlagRequest](env.Payload); err == nil {
			callErr = ctl.Hub.ToggleParticipantLocalMute(ctx, caller, p.ConferenceID, p.ParticipantID, p.Muted)
		}
	case "ToggleAllParticipantLocalMute":
		var p participantFlagRequest
		if p, err = decode[participantFlagRequest](env.Payload); err == nil {
			callErr = ctl.Hub.ToggleAllParticipantLocalMute(ctx, caller, p.ConferenceID, p.Muted)
		}
	case "PushAudioRestartAction":
		var p participantFlagRequest
		if p, err = decode[participantFlagRequest](env.Payload); err == nil {
			ctl.Hub.PushAudioRestartAction(ctx, caller, p.ConferenceID, p.ParticipantID)
		}
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(c, "unknown_type")
		return
	}

	switch {
	case err != nil:
		log.Error().Err(err).Str("module", "signal").Str("type", env.Type).Msg("bad payload")
		ctl.sendError(c, "bad_payload")
	case errors.Is(callErr, hub.ErrForbidden):
		ctl.sendError(c, "forbidden")
	case callErr != nil:
		log.Error().Err(callErr).Str("module", "signal").Str("type", env.Type).Msg("hub call refused")
		ctl.sendError(c, "failed")
	}
}
