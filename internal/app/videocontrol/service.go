// Package videocontrol stores per-conference spotlight and local mute state.
package videocontrol

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hearings/internal/app/store"
	"github.com/dkeye/Hearings/internal/core"
	"github.com/dkeye/Hearings/internal/domain"
)

type Service struct {
	backend core.Cache
	ttl     time.Duration
	locks   *store.KeyedMutex[uuid.UUID]
}

func NewService(backend core.Cache, ttl time.Duration) *Service {
	return &Service{
		backend: backend,
		ttl:     ttl,
		locks:   store.NewKeyedMutex[uuid.UUID](),
	}
}

func statusesKey(conferenceID uuid.UUID) string { return "videocontrol:" + conferenceID.String() }

// Get returns nil, nil when nothing is stored for the conference.
func (s *Service) Get(ctx context.Context, conferenceID uuid.UUID) (*domain.ConferenceVideoControlStatuses, error) {
	raw, err := s.backend.Get(ctx, statusesKey(conferenceID))
	if errors.Is(err, core.ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	statuses := domain.NewConferenceVideoControlStatuses()
	if err := json.Unmarshal(raw, statuses); err != nil {
		return nil, fmt.Errorf("decode video control statuses %s: %w", conferenceID, err)
	}
	if statuses.ParticipantIDToVideoControlStatusMap == nil {
		statuses.ParticipantIDToVideoControlStatusMap = make(map[string]domain.VideoControlStatus)
	}
	return statuses, nil
}

// Set replaces the stored statuses as a whole.
func (s *Service) Set(ctx context.Context, conferenceID uuid.UUID, statuses *domain.ConferenceVideoControlStatuses) error {
	unlock, err := s.locks.Lock(ctx, conferenceID)
	if err != nil {
		return err
	}
	defer unlock()
	return s.set(ctx, conferenceID, statuses)
}

func (s *Service) set(ctx context.Context, conferenceID uuid.UUID, statuses *domain.ConferenceVideoControlStatuses) error {
	if statuses == nil {
		statuses = domain.NewConferenceVideoControlStatuses()
	}
	raw, err := json.Marshal(statuses)
	if err != nil {
		return fmt.Errorf("encode video control statuses %s: %w", conferenceID, err)
	}
	if err := s.backend.Set(ctx, statusesKey(conferenceID), raw, s.ttl); err != nil {
		return fmt.Errorf("store video control statuses %s: %w", conferenceID, err)
	}
	return nil
}

// UpdateParticipant is a read-modify-write of one participant's status,
// serialised per conference.
func (s *Service) UpdateParticipant(ctx context.Context, conferenceID uuid.UUID, participantID string, status domain.VideoControlStatus) (*domain.ConferenceVideoControlStatuses, error) {
	unlock, err := s.locks.Lock(ctx, conferenceID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	statuses, err := s.Get(ctx, conferenceID)
	if err != nil {
		return nil, err
	}
	if statuses == nil {
		statuses = domain.NewConferenceVideoControlStatuses()
	}
	if current, ok := statuses.ParticipantIDToVideoControlStatusMap[participantID]; ok && current.Equal(status) {
		return statuses, nil
	}
	statuses.ParticipantIDToVideoControlStatusMap[participantID] = status
	if err := s.set(ctx, conferenceID, statuses); err != nil {
		return nil, err
	}
	log.Debug().
		Str("module", "app.videocontrol").
		Str("conference", conferenceID.String()).
		Str("participant", participantID).
		Bool("spotlighted", status.IsSpotlighted).
		Bool("audio_muted", status.IsLocalAudioMuted).
		Bool("video_muted", status.IsLocalVideoMuted).
		Msg("video control status updated")
	return statuses, nil
}

func (s *Service) Remove(ctx context.Context, conferenceID uuid.UUID) error {
	if _, err := s.backend.Del(ctx, statusesKey(conferenceID)); err != nil {
		return fmt.Errorf("remove video control statuses %s: %w", conferenceID, err)
	}
	return nil
}
