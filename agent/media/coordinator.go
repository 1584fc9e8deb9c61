package media

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/ultra-assistant/pkg/task"
)

const defaultDuckRatio = 0.60

// session is the playback state captured for one turn.
type session struct {
	wasPlaying         bool
	originalVolume     *int
	userRequestedPause bool
}

// Coordinator lowers and pauses music while the assistant handles a turn
// and puts it back afterwards unless the user asked for a pause.
type Coordinator struct {
	player Player
	ratio  float64

	mu   sync.Mutex
	sess session
	duck *task.Task
}

type Option func(*Coordinator)

func WithDuckRatio(r float64) Option {
	return func(c *Coordinator) {
		if r > 0 && r <= 1 {
			c.ratio = r
		}
	}
}

func NewCoordinator(player Player, opts ...Option) *Coordinator {
	c := &Coordinator{player: player, ratio: defaultDuckRatio}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Duck starts pausing playback in the background. Restore and the playback
// tools join it before touching the player.
func (c *Coordinator) Duck(ctx context.Context) {
	if c == nil || c.player == nil {
		return
	}
	// Each turn starts from a blank session so a failed read never restores
	// an earlier turn's volume.
	c.mu.Lock()
	c.sess = session{}
	c.mu.Unlock()

	t := task.Go(func() error {
		state, err := c.player.Playback(ctx)
		if err != nil {
			return err
		}

		c.mu.Lock()
		c.sess.wasPlaying = state.Playing
		if state.Volume != nil {
			v := *state.Volume
			c.sess.originalVolume = &v
		}
		c.mu.Unlock()

		if state.Playing {
			if err := c.player.Pause(ctx); err != nil {
				return err
			}
		}
		if state.Volume != nil {
			return c.player.SetVolume(ctx, int(float64(*state.Volume)*c.ratio))
		}
		return nil
	})

	c.mu.Lock()
	c.duck = t
	c.mu.Unlock()
}

func (c *Coordinator) join() {
	c.mu.Lock()
	t := c.duck
	c.mu.Unlock()
	if err := t.Wait(); err != nil {
		log.Debug().Err(err).Msg("media duck failed")
	}
}

// Restore brings volume and playback back to their pre-turn state.
func (c *Coordinator) Restore(ctx context.Context) {
	if c == nil || c.player == nil {
		return
	}
	c.join()

	c.mu.Lock()
	sess := c.sess
	c.sess.wasPlaying = false
	c.duck = nil
	c.mu.Unlock()

	if sess.userRequestedPause {
		return
	}
	if sess.originalVolume != nil {
		if err := c.player.SetVolume(ctx, *sess.originalVolume); err != nil {
			log.Debug().Err(err).Msg("media restore volume failed")
		}
	}
	if sess.wasPlaying {
		if err := c.player.Resume(ctx); err != nil {
			log.Debug().Err(err).Msg("media resume failed")
		}
	}
}

type ToggleAction string

const (
	ActionPause   ToggleAction = "pause"
	ActionUnpause ToggleAction = "unpause"
	ActionToggle  ToggleAction = "toggle"
)

// Toggle applies an explicit playback request and returns the line the
// assistant should say.
func (c *Coordinator) Toggle(ctx context.Context, action ToggleAction) (string, error) {
	c.join()

	state, err := c.player.Playback(ctx)
	if err != nil {
		return "", err
	}

	switch action {
	case ActionPause:
		c.mu.Lock()
		c.sess.userRequestedPause = true
		c.sess.wasPlaying = false
		original := c.sess.originalVolume
		c.mu.Unlock()
		if state.Playing {
			if err := c.player.Pause(ctx); err != nil {
				return "", err
			}
		}
		if original != nil {
			if err := c.player.SetVolume(ctx, *original); err != nil {
				return "", err
			}
		}
		return "Okay, it's paused.", nil

	case ActionUnpause:
		c.mu.Lock()
		c.sess.userRequestedPause = false
		c.sess.wasPlaying = true
		c.mu.Unlock()
		if !state.Playing {
			if err := c.player.Resume(ctx); err != nil {
				return "", err
			}
		}
		return "Okay, it's unpaused.", nil

	case ActionToggle:
		c.mu.Lock()
		c.sess.wasPlaying = !state.Playing
		c.sess.userRequestedPause = state.Playing
		c.mu.Unlock()
		if state.Playing {
			if err := c.player.Pause(ctx); err != nil {
				return "", err
			}
			return "Okay, I paused the song.", nil
		}
		if err := c.player.Resume(ctx); err != nil {
			return "", err
		}
		return "Okay, I unpaused the song.", nil
	}
	return "", ErrInvalidAction
}

// SetVolume sets the player volume and makes it the level restored after
// the turn.
func (c *Coordinator) SetVolume(ctx context.Context, percent int) error {
	c.join()
	percent = max(0, min(100, percent))
	if err := c.player.SetVolume(ctx, percent); err != nil {
		return err
	}
	c.mu.Lock()
	c.sess.originalVolume = &percent
	c.mu.Unlock()
	return nil
}

// Play starts a track. Playback requested this way is not resumed or
// paused by Restore.
func (c *Coordinator) Play(ctx context.Context, query string) (string, error) {
	c.join()
	name, err := c.player.PlayTrack(ctx, query)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.sess.wasPlaying = false
	c.mu.Unlock()
	return name, nil
}
