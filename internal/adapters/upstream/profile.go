package upstream

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/dkeye/Hearings/internal/core"
	"github.com/dkeye/Hearings/internal/domain"
)

type userResponse struct {
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	UserRole    string `json:"user_role"`
}

// ProfileClient resolves profiles from the user service and maps the
// account role onto an application role.
type ProfileClient struct {
	client
}

var _ core.ProfileProvider = (*ProfileClient)(nil)

func NewProfileClient(baseURL string, hc *http.Client, timeout time.Duration) *ProfileClient {
	return &ProfileClient{client: newClient(baseURL, hc, timeout)}
}

func (p *ProfileClient) GetProfile(ctx context.Context, username string) (*domain.UserProfile, error) {
	var out userResponse
	if err := p.do(ctx, http.MethodGet, "/users/username/"+url.PathEscape(username), nil, &out); err != nil {
		return nil, err
	}
	if out.Username == "" {
		out.Username = username
	}

	var roles []domain.AppRole
	if role := domain.ParseUserRole(out.UserRole).ToAppRole(); role != domain.AppRoleUnmapped {
		roles = append(roles, role)
	}
	profile, err := domain.NewUserProfile(out.Username, roles...)
	if err != nil {
		return nil, err
	}
	profile.FirstName = out.FirstName
	profile.LastName = out.LastName
	profile.DisplayName = out.DisplayName
	return profile, nil
}
