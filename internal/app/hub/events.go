package hub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/dkeye/Hearings/internal/core"
	"github.com/dkeye/Hearings/internal/domain"
)

// Client-side handler names.
const (
	EventReceiveMessage             = "ReceiveMessage"
	EventAdminAnsweredChat          = "AdminAnsweredChat"
	EventReceiveHeartbeat           = "ReceiveHeartbeat"
	EventHearingTransfer            = "HearingTransfer"
	EventParticipantMediaStatus     = "ParticipantMediaStatusMessage"
	EventParticipantRemoteMute      = "ParticipantRemoteMuteMessage"
	EventParticipantHandRaise       = "ParticipantHandRaiseMessage"
	EventUpdateParticipantLocalMute = "UpdateParticipantLocalMuteMessage"
	EventAudioRestartActioned       = "AudioRestartActioned"
)

type TransferDirection string

const (
	TransferIn  TransferDirection = "In"
	TransferOut TransferDirection = "Out"
)

type ChatMessage struct {
	ConferenceID    uuid.UUID `json:"conference_id"`
	From            string    `json:"from"`
	FromDisplayName string    `json:"from_display_name"`
	To              string    `json:"to"`
	Message         string    `json:"message"`
	Timestamp       time.Time `json:"timestamp"`
	MessageUUID     uuid.UUID `json:"message_uuid"`
}

type AdminAnsweredChat struct {
	ConferenceID uuid.UUID `json:"conference_id"`
	Username     string    `json:"username"`
}

type HeartbeatNotice struct {
	ConferenceID           uuid.UUID       `json:"conference_id"`
	ParticipantID          uuid.UUID       `json:"participant_id"`
	Health                 HeartbeatHealth `json:"heartbeat_health"`
	BrowserName            string          `json:"browser_name"`
	BrowserVersion         string          `json:"browser_version"`
	OperatingSystem        string          `json:"operating_system"`
	OperatingSystemVersion string          `json:"operating_system_version"`
}

type HearingTransfer struct {
	ConferenceID  uuid.UUID         `json:"conference_id"`
	ParticipantID uuid.UUID         `json:"participant_id"`
	Direction     TransferDirection `json:"transfer_direction"`
}

type MediaStatus struct {
	IsLocalAudioMuted bool `json:"is_local_audio_muted"`
	IsLocalVideoMuted bool `json:"is_local_video_muted"`
}

type MediaStatusNotice struct {
	ConferenceID  uuid.UUID   `json:"conference_id"`
	ParticipantID uuid.UUID   `json:"participant_id"`
	MediaStatus   MediaStatus `json:"media_status"`
}

type RemoteMuteNotice struct {
	ConferenceID  uuid.UUID `json:"conference_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	IsRemoteMuted bool      `json:"is_remote_muted"`
}

type HandRaiseNotice struct {
	ConferenceID  uuid.UUID `json:"conference_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	HasHandRaised bool      `json:"has_hand_raised"`
}

type LocalMuteNotice struct {
	ConferenceID  uuid.UUID `json:"conference_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	Muted         bool      `json:"muted"`
}

type AudioRestartNotice struct {
	ConferenceID  uuid.UUID `json:"conference_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
}

// SendMessage relays chat between an admin and a participant. The message
// is persisted upstream before delivery.
func (h *Hub) SendMessage(ctx context.Context, caller Caller, conferenceID uuid.UUID, message, to string, messageUUID uuid.UUID) {
	h.guard("SendMessage", conferenceID, func() error {
		conf, err := h.conference(ctx, conferenceID)
		if err != nil {
			return err
		}
		sender, err := h.profiles.Get(ctx, caller.Username)
		if err != nil {
			return err
		}

		var participant *domain.Participant
		fromDisplayName := sender.DisplayName
		if sender.IsAdmin() {
			participant = conf.GetParticipantByUsername(to)
			if participant == nil {
				return fmt.Errorf("recipient %s: %w", to, domain.ErrNotFound)
			}
		} else {
			participant = conf.GetParticipantByUsername(sender.Username)
			if participant == nil {
				return fmt.Errorf("sender %s: %w", sender.Username, domain.ErrNotFound)
			}
			if conf.GetParticipantByUsername(to) != nil {
				return fmt.Errorf("participant %s may only message an admin", sender.Username)
			}
			fromDisplayName = participant.DisplayName
		}

		err = h.video.AddInstantMessage(ctx, conferenceID, core.InstantMessage{
			From:        sender.Username,
			To:          to,
			MessageText: message,
			MessageUUID: messageUUID,
		})
		if err != nil {
			return fmt.Errorf("persist message %s: %w", messageUUID, err)
		}

		msg := ChatMessage{
			ConferenceID:    conferenceID,
			From:            sender.Username,
			FromDisplayName: fromDisplayName,
			To:              to,
			Message:         message,
			Timestamp:       h.now().UTC(),
			MessageUUID:     messageUUID,
		}
		sendErr := h.fanOut(ctx, core.Event{Name: EventReceiveMessage, Payload: msg},
			userGroup(participant.Username), conferenceID.String())

		if !strings.EqualFold(to, h.cfg.AdminAlias) {
			notice := AdminAnsweredChat{ConferenceID: conferenceID, Username: strings.ToLower(to)}
			if err := h.fanOut(ctx, core.Event{Name: EventAdminAnsweredChat, Payload: notice}, GroupVhOfficers); err != nil {
				log.Error().Str("module", "app.hub").Err(err).Str("conference", conferenceID.String()).Msg("admin answered notice failed")
			}
		}
		return sendErr
	})
}

// SendHeartbeat tells admins, the participant and the judge how healthy
// the participant's connection is, then saves the heartbeat upstream.
func (h *Hub) SendHeartbeat(ctx context.Context, caller Caller, conferenceID, participantID uuid.UUID, hb core.Heartbeat) {
	h.guard("SendHeartbeat", conferenceID, func() error {
		conf, err := h.conference(ctx, conferenceID)
		if err != nil {
			return err
		}
		participant, err := conf.FindParticipant(participantID)
		if err != nil {
			return err
		}

		notice := HeartbeatNotice{
			ConferenceID:           conferenceID,
			ParticipantID:          participantID,
			Health:                 HealthOf(hb),
			BrowserName:            hb.BrowserName,
			BrowserVersion:         hb.BrowserVersion,
			OperatingSystem:        hb.OperatingSystem,
			OperatingSystemVersion: hb.OperatingSystemVersion,
		}
		groups := []string{GroupVhOfficers, userGroup(participant.Username)}
		if !participant.IsJudge() {
			judge, err := conf.GetJudge()
			if err != nil {
				log.Warn().Str("module", "app.hub").Err(err).Str("conference", conferenceID.String()).Msg("heartbeat not sent to judge")
			} else {
				groups = append(groups, userGroup(judge.Username))
			}
		}
		sendErr := h.fanOut(ctx, core.Event{Name: EventReceiveHeartbeat, Payload: notice}, groups...)

		if err := h.video.SaveHeartbeat(ctx, conferenceID, participantID, hb); err != nil {
			log.Error().Str("module", "app.hub").Err(err).Str("participant", participantID.String()).Msg("save heartbeat failed")
		}
		return sendErr
	})
}

func (h *Hub) SendTransferRequest(ctx context.Context, caller Caller, conferenceID, participantID uuid.UUID, direction TransferDirection) {
	h.guard("SendTransferRequest", conferenceID, func() error {
		conf, err := h.conference(ctx, conferenceID)
		if err != nil {
			return err
		}
		ev := core.Event{Name: EventHearingTransfer, Payload: HearingTransfer{
			ConferenceID:  conferenceID,
			ParticipantID: participantID,
			Direction:     direction,
		}}
		return h.fanOut(ctx, ev, participantGroups(conf.Participants)...)
	})
}

// SendMediaDeviceStatus only reaches hosts.
func (h *Hub) SendMediaDeviceStatus(ctx context.Context, caller Caller, conferenceID, participantID uuid.UUID, status MediaStatus) {
	h.guard("SendMediaDeviceStatus", conferenceID, func() error {
		conf, err := h.conference(ctx, conferenceID)
		if err != nil {
			return err
		}
		var hosts []*domain.Participant
		for _, p := range conf.Participants {
			if p.IsHost() {
				hosts = append(hosts, p)
			}
		}
		ev := core.Event{Name: EventParticipantMediaStatus, Payload: MediaStatusNotice{
			ConferenceID:  conferenceID,
			ParticipantID: participantID,
			MediaStatus:   status,
		}}
		return h.fanOut(ctx, ev, participantGroups(hosts)...)
	})
}

func (h *Hub) UpdateParticipantRemoteMuteStatus(ctx context.Context, caller Caller, conferenceID, participantID uuid.UUID, isRemoteMuted bool) {
	h.guard("UpdateParticipantRemoteMuteStatus", conferenceID, func() error {
		conf, err := h.conference(ctx, conferenceID)
		if err != nil {
			return err
		}
		ev := core.Event{Name: EventParticipantRemoteMute, Payload: RemoteMuteNotice{
			ConferenceID:  conferenceID,
			ParticipantID: participantID,
			IsRemoteMuted: isRemoteMuted,
		}}
		return h.fanOut(ctx, ev, participantGroups(conf.Participants)...)
	})
}

func (h *Hub) UpdateParticipantHandStatus(ctx context.Context, caller Caller, conferenceID, participantID uuid.UUID, hasHandRaised bool) {
	h.guard("UpdateParticipantHandStatus", conferenceID, func() error {
		conf, err := h.conference(ctx, conferenceID)
		if err != nil {
			return err
		}
		ev := core.Event{Name: EventParticipantHandRaise, Payload: HandRaiseNotice{
			ConferenceID:  conferenceID,
			ParticipantID: participantID,
			HasHandRaised: hasHandRaised,
		}}
		return h.fanOut(ctx, ev, participantGroups(conf.Participants)...)
	})
}

// ToggleParticipantLocalMute asks one participant's client to mute or
// unmute itself. Hosts only.
func (h *Hub) ToggleParticipantLocalMute(ctx context.Context, caller Caller, conferenceID, participantID uuid.UUID, muted bool) error {
	if err := h.requireHost(ctx, caller); err != nil {
		return err
	}
	h.guard("ToggleParticipantLocalMute", conferenceID, func() error {
		conf, err := h.conference(ctx, conferenceID)
		if err != nil {
			return err
		}
		participant, err := conf.FindParticipant(participantID)
		if err != nil {
			return err
		}
		ev := core.Event{Name: EventUpdateParticipantLocalMute, Payload: LocalMuteNotice{
			ConferenceID:  conferenceID,
			ParticipantID: participantID,
			Muted:         muted,
		}}
		return h.fanOut(ctx, ev, userGroup(participant.Username))
	})
	return nil
}

// ToggleAllParticipantLocalMute mutes or unmutes every non-host
// participant currently in the hearing room. Hosts only.
func (h *Hub) ToggleAllParticipantLocalMute(ctx context.Context, caller Caller, conferenceID uuid.UUID, muted bool) error {
	if err := h.requireHost(ctx, caller); err != nil {
		return err
	}
	h.guard("ToggleAllParticipantLocalMute", conferenceID, func() error {
		conf, err := h.conference(ctx, conferenceID)
		if err != nil {
			return err
		}
		sends := pool.New().WithErrors()
		for _, p := range conf.Participants {
			if p.IsHost() || !p.IsInHearing() {
				continue
			}
			ev := core.Event{Name: EventUpdateParticipantLocalMute, Payload: LocalMuteNotice{
				ConferenceID:  conferenceID,
				ParticipantID: p.ID,
				Muted:         muted,
			}}
			sends.Go(func() error { return h.fanOut(ctx, ev, userGroup(p.Username)) })
		}
		return sends.Wait()
	})
	return nil
}

// PushAudioRestartAction tells every other host that participantID
// restarted its audio.
func (h *Hub) PushAudioRestartAction(ctx context.Context, caller Caller, conferenceID, participantID uuid.UUID) {
	h.guard("PushAudioRestartAction", conferenceID, func() error {
		conf, err := h.conference(ctx, conferenceID)
		if err != nil {
			return err
		}
		var others []*domain.Participant
		for _, p := range conf.Participants {
			if p.IsHost() && p.ID != participantID {
				others = append(others, p)
			}
		}
		ev := core.Event{Name: EventAudioRestartActioned, Payload: AudioRestartNotice{
			ConferenceID:  conferenceID,
			ParticipantID: participantID,
		}}
		return h.fanOut(ctx, ev, participantGroups(others)...)
	})
}
