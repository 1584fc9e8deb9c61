package media

import (
	"context"
	"errors"
)

var (
	ErrTrackNotFound = errors.New("track not found")
	ErrNoSession     = errors.New("no active playback session")
	ErrInvalidAction = errors.New("invalid playback action")
)

// Playback is a snapshot of the player. Volume is nil when the device does
// not report it.
type Playback struct {
	Playing bool
	Volume  *int
	Track   string
}

type Player interface {
	Playback(ctx context.Context) (Playback, error)
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	SetVolume(ctx context.Context, percent int) error
	// PlayTrack searches for query and starts the best match, returning its
	// display name.
	PlayTrack(ctx context.Context, query string) (string, error)
}
