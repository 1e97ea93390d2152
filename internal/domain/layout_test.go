package domain_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkeye/Hearings/internal/domain"
)

func TestGetRecommendedLayout(t *testing.T) {
	tests := []struct {
		participants int
		endpoints    int
		want         domain.Layout
	}{
		{participants: 0, endpoints: 0, want: domain.LayoutDynamic},
		{participants: 5, endpoints: 0, want: domain.LayoutDynamic},
		{participants: 6, endpoints: 0, want: domain.LayoutOnePlus7},
		{participants: 4, endpoints: 2, want: domain.LayoutOnePlus7},
		{participants: 9, endpoints: 0, want: domain.LayoutOnePlus7},
		{participants: 10, endpoints: 0, want: domain.LayoutTwoPlus21},
		{participants: 8, endpoints: 2, want: domain.LayoutTwoPlus21},
		{participants: 15, endpoints: 0, want: domain.LayoutTwoPlus21},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("given %d participants and %d endpoints then %s", tt.participants, tt.endpoints, tt.want)
		t.Run(name, func(t *testing.T) {
			c := newConference()
			for i := range tt.participants {
				c.AddParticipant(newParticipant(fmt.Sprintf("p%d@test", i), domain.RoleIndividual))
			}
			for i := range tt.endpoints {
				c.AddEndpoint(newEndpoint(fmt.Sprintf("e%d", i)))
			}
			assert.Equal(t, tt.want, c.GetRecommendedLayout())
		})
	}
}
