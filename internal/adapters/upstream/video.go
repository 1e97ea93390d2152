package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/dkeye/Hearings/internal/core"
)

// VideoClient talks to the video-session service.
type VideoClient struct {
	client
}

var _ core.VideoAPI = (*VideoClient)(nil)

func NewVideoClient(baseURL string, hc *http.Client, timeout time.Duration) *VideoClient {
	return &VideoClient{client: newClient(baseURL, hc, timeout)}
}

func (v *VideoClient) GetConferenceDetails(ctx context.Context, conferenceID uuid.UUID) (*core.ConferenceDetails, error) {
	var out core.ConferenceDetails
	if err := v.do(ctx, http.MethodGet, "/conferences/"+conferenceID.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type conferenceSummary struct {
	ID uuid.UUID `json:"id"`
}

func (v *VideoClient) GetConferencesToday(ctx context.Context, username string) ([]uuid.UUID, error) {
	var out []conferenceSummary
	path := "/conferences/today?username=" + url.QueryEscape(username)
	if err := v.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(out))
	for _, c := range out {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (v *VideoClient) AddInstantMessage(ctx context.Context, conferenceID uuid.UUID, msg core.InstantMessage) error {
	return v.do(ctx, http.MethodPost, "/conferences/"+conferenceID.String()+"/instantmessages", msg, nil)
}

func (v *VideoClient) SaveHeartbeat(ctx context.Context, conferenceID, participantID uuid.UUID, hb core.Heartbeat) error {
	path := fmt.Sprintf("/conferences/%s/participants/%s/heartbeats", conferenceID, participantID)
	return v.do(ctx, http.MethodPost, path, hb, nil)
}
