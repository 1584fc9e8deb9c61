package tool

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
	"github.com/tanpawarit/ultra-assistant/agent/media"
)

type playSongArgs struct {
	SongName string `json:"song_name"`
}

type toggleArgs struct {
	Action string `json:"action"`
}

type spotifyVolumeArgs struct {
	VolumePercent int `json:"volume_percent"`
}

func (h *handlers) playSong(ctx context.Context, args playSongArgs) (contractx.ToolResult, error) {
	if h.deps.Media == nil {
		return notConfigured("Spotify"), nil
	}
	name, err := h.deps.Media.Play(ctx, args.SongName)
	switch {
	case errors.Is(err, media.ErrTrackNotFound):
		return contractx.Failure("Sorry, I couldn't find the song you requested."), nil
	case errors.Is(err, media.ErrNoSession):
		return contractx.Failure("Spotify has no active device. Ask the user to open Spotify and play and pause a song once so the session is recognised."), nil
	case err != nil:
		return contractx.ToolResult{}, err
	}
	return contractx.Success(map[string]string{"track": name}).
		WithMessage(fmt.Sprintf("Tell the user 'The song \"%s\" is now playing.'", name)), nil
}

func (h *handlers) togglePlayback(ctx context.Context, args toggleArgs) (contractx.ToolResult, error) {
	if h.deps.Media == nil {
		return notConfigured("Spotify"), nil
	}
	say, err := h.deps.Media.Toggle(ctx, media.ToggleAction(args.Action))
	if errors.Is(err, media.ErrInvalidAction) {
		return contractx.Failure("Invalid action specified"), nil
	}
	if err != nil {
		return contractx.ToolResult{}, err
	}
	return contractx.Success(nil).WithMessage("Say: " + say), nil
}

func (h *handlers) spotifyVolume(ctx context.Context, args spotifyVolumeArgs) (contractx.ToolResult, error) {
	if h.deps.Media == nil {
		return notConfigured("Spotify"), nil
	}
	level := max(0, min(100, args.VolumePercent))
	if err := h.deps.Media.SetVolume(ctx, level); err != nil {
		return contractx.ToolResult{}, err
	}
	return contractx.Success(map[string]int{"volume_percent": level}).
		WithMessage(fmt.Sprintf("Spotify volume set to %d%%", level)), nil
}
