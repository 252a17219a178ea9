package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	authdomain "github.com/cohortly/cohortly/internal/auth/domain"
	"github.com/cohortly/cohortly/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Params struct {
	fx.In

	Config *config.Config
	Log    *zap.Logger
}

type verifier struct {
	baseURL    string
	serviceKey string
	log        *zap.Logger
	client     *http.Client
}

func New(p Params) authdomain.Verifier {
	return &verifier{
		baseURL:    strings.TrimRight(p.Config.BackendURL, "/"),
		serviceKey: p.Config.BackendServiceKey,
		log:        p.Log.Named("auth.client"),
		client:     &http.Client{Timeout: 12 * time.Second},
	}
}

func (v *verifier) Verify(ctx context.Context, token string) (*authdomain.User, error) {
	if strings.TrimSpace(v.baseURL) == "" || strings.TrimSpace(v.serviceKey) == "" {
		return nil, authdomain.ErrInvalidConfig
	}
	if strings.TrimSpace(token) == "" {
		return nil, authdomain.ErrUnauthorized
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.serviceKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, authdomain.ErrUnauthorized
	case resp.StatusCode >= http.StatusBadRequest:
		v.log.Warn("auth backend rejected token lookup", zap.Int("status", resp.StatusCode))
		return nil, authdomain.ErrUnauthorized
	}

	var body userResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.ID == "" {
		return nil, authdomain.ErrUnauthorized
	}
	return &authdomain.User{ID: body.ID, Email: body.Email}, nil
}
