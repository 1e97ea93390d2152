package upstream

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dkeye/Hearings/internal/core"
)

type BookingClient struct {
	client
}

var _ core.BookingAPI = (*BookingClient)(nil)

func NewBookingClient(baseURL string, hc *http.Client, timeout time.Duration) *BookingClient {
	return &BookingClient{client: newClient(baseURL, hc, timeout)}
}

func (b *BookingClient) GetHearingDetails(ctx context.Context, hearingID uuid.UUID) (*core.HearingDetails, error) {
	var out core.HearingDetails
	if err := b.do(ctx, http.MethodGet, "/hearings/"+hearingID.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
