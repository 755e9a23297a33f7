package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

	providerGoogle = "google"

	// maxGoogleResponseSize はGoogleのレスポンスとして読み込む上限（1MB）。
	maxGoogleResponseSize = 1 << 20
)

// GoogleOAuthConfig はGoogle OAuthプロバイダーの設定。
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// 以下はテストでのみ上書きする
	AuthURL     string
	TokenURL    string
	UserInfoURL string
	HTTPClient  *http.Client
}

// GoogleOAuthProvider はGoogleのOpenID Connectでログインさせる。
type GoogleOAuthProvider struct {
	config GoogleOAuthConfig
	client *http.Client
}

// NewGoogleOAuthProvider はGoogleOAuthProviderを生成する。
func NewGoogleOAuthProvider(config GoogleOAuthConfig) *GoogleOAuthProvider {
	if config.AuthURL == "" {
		config.AuthURL = googleAuthURL
	}
	if config.TokenURL == "" {
		config.TokenURL = googleTokenURL
	}
	if config.UserInfoURL == "" {
		config.UserInfoURL = googleUserInfoURL
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoogleOAuthProvider{config: config, client: client}
}

// GetLoginURL はGoogleの同意画面URLを返す。スコープは openid email profile。
func (p *GoogleOAuthProvider) GetLoginURL(state string) string {
	q := url.Values{}
	q.Set("client_id", p.config.ClientID)
	q.Set("redirect_uri", p.config.RedirectURL)
	q.Set("response_type", "code")
	q.Set("scope", "openid email profile")
	q.Set("state", state)
	q.Set("prompt", "select_account")
	return p.config.AuthURL + "?" + q.Encode()
}

type googleToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	IDToken     string `json:"id_token"`
}

// googleProfile はuserinfoエンドポイントのレスポンスのうち使う項目。
type googleProfile struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// ExchangeCode は認可コードをアクセストークンに交換し、プロフィールを取得する。
func (p *GoogleOAuthProvider) ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error) {
	if code == "" {
		return nil, fmt.Errorf("認可コードが空です")
	}

	var token googleToken
	form := url.Values{
		"code":          {code},
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"redirect_uri":  {p.config.RedirectURL},
		"grant_type":    {"authorization_code"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("トークンリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := p.doJSON(req, &token); err != nil {
		return nil, fmt.Errorf("トークン交換に失敗: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("アクセストークンが空です")
	}

	var profile googleProfile
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ユーザー情報リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	if err := p.doJSON(req, &profile); err != nil {
		return nil, fmt.Errorf("ユーザー情報の取得に失敗: %w", err)
	}
	if profile.Sub == "" {
		return nil, fmt.Errorf("ユーザー情報にsubが含まれていません")
	}

	return &OAuthUserInfo{
		Provider:       providerGoogle,
		ProviderUserID: profile.Sub,
		Email:          profile.Email,
		Name:           profile.Name,
		Image:          profile.Picture,
		AccessToken:    token.AccessToken,
	}, nil
}

// doJSON はリクエストを送り、200以外ならエラー、200ならボディをoutにデコードする。
func (p *GoogleOAuthProvider) doJSON(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxGoogleResponseSize))
	if err != nil {
		return fmt.Errorf("レスポンスの読み込みに失敗: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("レスポンスの解析に失敗: %w", err)
	}
	return nil
}

var _ OAuthProvider = (*GoogleOAuthProvider)(nil)
