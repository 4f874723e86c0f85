package session

import (
	"encoding/json"
	"time"
)

// TokenResponse is the body returned by /auth/login and /auth/refresh.
type TokenResponse struct {
	// AccessToken is the bearer credential sent on every private request.
	AccessToken string `json:"access_token"`

	// RefreshToken is exchanged for a new access token once it expires.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is "bearer".
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the access token lifetime in seconds. Zero means the
	// server did not say and the JWT exp claim is used instead.
	ExpiresIn int `json:"expires_in,omitempty"`
}

// UnmarshalJSON also accepts the camelCase field names used by the mobile
// API, optionally wrapped in a "data" envelope.
func (t *TokenResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		AccessToken       string          `json:"access_token"`
		RefreshToken      string          `json:"refresh_token"`
		TokenType         string          `json:"token_type"`
		ExpiresIn         int             `json:"expires_in"`
		AccessTokenCamel  string          `json:"accessToken"`
		RefreshTokenCamel string          `json:"refreshToken"`
		TokenTypeCamel    string          `json:"tokenType"`
		ExpiresInCamel    int             `json:"expiresIn"`
		Data              json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.AccessToken == "" && raw.AccessTokenCamel == "" && len(raw.Data) > 0 && raw.Data[0] == '{' {
		return t.UnmarshalJSON(raw.Data)
	}

	*t = TokenResponse{
		AccessToken:  firstNonEmpty(raw.AccessToken, raw.AccessTokenCamel),
		RefreshToken: firstNonEmpty(raw.RefreshToken, raw.RefreshTokenCamel),
		TokenType:    firstNonEmpty(raw.TokenType, raw.TokenTypeCamel),
		ExpiresIn:    raw.ExpiresIn,
	}
	if t.ExpiresIn == 0 {
		t.ExpiresIn = raw.ExpiresInCamel
	}
	return nil
}

// ExpiresAt returns now+ExpiresIn, or the zero time when ExpiresIn is unset.
func (t TokenResponse) ExpiresAt(now time.Time) time.Time {
	if t.ExpiresIn <= 0 {
		return time.Time{}
	}
	return now.Add(time.Duration(t.ExpiresIn) * time.Second)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
