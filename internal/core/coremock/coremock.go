// Package coremock holds testify mocks of the core upstream ports.
package coremock

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dkeye/Hearings/internal/core"
	"github.com/dkeye/Hearings/internal/domain"
)

type VideoAPI struct {
	mock.Mock
}

var _ core.VideoAPI = (*VideoAPI)(nil)

func (m *VideoAPI) GetConferenceDetails(ctx context.Context, conferenceID uuid.UUID) (*core.ConferenceDetails, error) {
	args := m.Called(ctx, conferenceID)
	d, _ := args.Get(0).(*core.ConferenceDetails)
	return d, args.Error(1)
}

func (m *VideoAPI) GetConferencesToday(ctx context.Context, username string) ([]uuid.UUID, error) {
	args := m.Called(ctx, username)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

func (m *VideoAPI) AddInstantMessage(ctx context.Context, conferenceID uuid.UUID, msg core.InstantMessage) error {
	return m.Called(ctx, conferenceID, msg).Error(0)
}

func (m *VideoAPI) SaveHeartbeat(ctx context.Context, conferenceID, participantID uuid.UUID, hb core.Heartbeat) error {
	return m.Called(ctx, conferenceID, participantID, hb).Error(0)
}

type BookingAPI struct {
	mock.Mock
}

var _ core.BookingAPI = (*BookingAPI)(nil)

func (m *BookingAPI) GetHearingDetails(ctx context.Context, hearingID uuid.UUID) (*core.HearingDetails, error) {
	args := m.Called(ctx, hearingID)
	h, _ := args.Get(0).(*core.HearingDetails)
	return h, args.Error(1)
}

type ProfileProvider struct {
	mock.Mock
}

var _ core.ProfileProvider = (*ProfileProvider)(nil)

func (m *ProfileProvider) GetProfile(ctx context.Context, username string) (*domain.UserProfile, error) {
	args := m.Called(ctx, username)
	p, _ := args.Get(0).(*domain.UserProfile)
	return p, args.Error(1)
}
