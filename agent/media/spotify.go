package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

type SpotifyConfig struct {
	ClientID     string `envconfig:"CLIENT_ID"`
	ClientSecret string `envconfig:"CLIENT_SECRET"`
	RedirectURL  string `envconfig:"REDIRECT_URL" default:"http://localhost:8080/callback"`
	RefreshToken string `envconfig:"REFRESH_TOKEN"`
}

func (c SpotifyConfig) Enabled() bool {
	return strings.TrimSpace(c.ClientID) != "" && strings.TrimSpace(c.RefreshToken) != ""
}

type SpotifyPlayer struct {
	client *spotify.Client
}

// NewSpotifyPlayer authenticates with a stored refresh token. The oauth2
// transport refreshes the access token as needed.
func NewSpotifyPlayer(ctx context.Context, cfg SpotifyConfig) (*SpotifyPlayer, error) {
	if !cfg.Enabled() {
		return nil, errors.New("spotify: client id and refresh token are required")
	}
	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURL),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserModifyPlaybackState,
			spotifyauth.ScopeUserReadPlaybackState,
			spotifyauth.ScopeUserReadCurrentlyPlaying,
		),
	)
	httpClient := auth.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	return &SpotifyPlayer{client: spotify.New(httpClient)}, nil
}

func NewSpotifyPlayerFromClient(client *spotify.Client) *SpotifyPlayer {
	return &SpotifyPlayer{client: client}
}

func (p *SpotifyPlayer) Playback(ctx context.Context) (Playback, error) {
	state, err := p.client.PlayerState(ctx)
	if err != nil {
		return Playback{}, fmt.Errorf("spotify: player state: %w", err)
	}
	if state == nil {
		return Playback{}, nil
	}
	out := Playback{Playing: state.Playing}
	if state.Device.ID != "" {
		v := int(state.Device.Volume)
		out.Volume = &v
	}
	if state.Item != nil {
		out.Track = state.Item.Name
	}
	return out, nil
}

func (p *SpotifyPlayer) Pause(ctx context.Context) error {
	if err := p.client.Pause(ctx); err != nil {
		return fmt.Errorf("spotify: pause: %w", err)
	}
	return nil
}

func (p *SpotifyPlayer) Resume(ctx context.Context) error {
	if err := p.client.Play(ctx); err != nil {
		return fmt.Errorf("spotify: play: %w", err)
	}
	return nil
}

func (p *SpotifyPlayer) SetVolume(ctx context.Context, percent int) error {
	if err := p.client.Volume(ctx, max(0, min(100, percent))); err != nil {
		return fmt.Errorf("spotify: volume: %w", err)
	}
	return nil
}

func (p *SpotifyPlayer) PlayTrack(ctx context.Context, query string) (string, error) {
	res, err := p.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return "", fmt.Errorf("spotify: search: %w", err)
	}
	if res.Tracks == nil || len(res.Tracks.Tracks) == 0 {
		return "", ErrTrackNotFound
	}
	track := res.Tracks.Tracks[0]
	if err := p.client.PlayOpt(ctx, &spotify.PlayOptions{URIs: []spotify.URI{track.URI}}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	return track.Name, nil
}
