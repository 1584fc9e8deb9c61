// Package osctl runs the operating-system commands behind power control,
// system volume, and application or URL launching.
package osctl

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/process"
)

var ErrUnsupported = errors.New("operation not supported on this platform")

type PowerAction string

const (
	PowerRestart  PowerAction = "restart"
	PowerShutdown PowerAction = "shutdown"
	PowerSleep    PowerAction = "sleep"
	PowerLock     PowerAction = "lock"
)

// Runner executes commands. Run waits for completion; Start detaches.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	Start(name string, args ...string) error
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

func (ExecRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go cmd.Wait()
	return nil
}

type Controller struct {
	goos   string
	runner Runner
	sleep  func(ctx context.Context, d time.Duration) error
}

type Option func(*Controller)

func WithGOOS(goos string) Option {
	return func(c *Controller) {
		if goos != "" {
			c.goos = goos
		}
	}
}

func WithRunner(r Runner) Option {
	return func(c *Controller) {
		if r != nil {
			c.runner = r
		}
	}
}

func New(opts ...Option) *Controller {
	c := &Controller{
		goos:   runtime.GOOS,
		runner: ExecRunner{},
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Controller) GOOS() string { return c.goos }

var powerCommands = map[string]map[PowerAction][]string{
	"windows": {
		PowerRestart:  {"shutdown", "/r", "/t", "0"},
		PowerShutdown: {"shutdown", "/s", "/t", "0"},
		PowerSleep:    {"rundll32.exe", "powrprof.dll,SetSuspendState", "0,1,0"},
		PowerLock:     {"rundll32.exe", "user32.dll,LockWorkStation"},
	},
	"darwin": {
		PowerRestart:  {"sudo", "shutdown", "-r", "now"},
		PowerShutdown: {"sudo", "shutdown", "-h", "now"},
		PowerSleep:    {"pmset", "sleepnow"},
		PowerLock:     {"pmset", "displaysleepnow"},
	},
	"linux": {
		PowerRestart:  {"sudo", "shutdown", "-r", "now"},
		PowerShutdown: {"sudo", "shutdown", "-h", "now"},
		PowerSleep:    {"systemctl", "suspend"},
		PowerLock:     {"loginctl", "lock-session"},
	},
}

func (c *Controller) PowerCommand(action PowerAction) ([]string, error) {
	table, ok := powerCommands[c.goos]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, c.goos)
	}
	cmd, ok := table[action]
	if !ok {
		return nil, fmt.Errorf("unknown power action %q", action)
	}
	return cmd, nil
}

// Power waits for delay, then issues the power command.
func (c *Controller) Power(ctx context.Context, action PowerAction, delay time.Duration) error {
	cmd, err := c.PowerCommand(action)
	if err != nil {
		return err
	}
	if delay > 0 {
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
	_, err = c.runner.Run(ctx, cmd[0], cmd[1:]...)
	return err
}

func ClampVolume(level int) int {
	return max(0, min(100, level))
}

func (c *Controller) VolumeCommand(level int) ([]string, error) {
	level = ClampVolume(level)
	switch c.goos {
	case "linux":
		return []string{"pactl", "set-sink-volume", "@DEFAULT_SINK@", strconv.Itoa(level) + "%"}, nil
	case "darwin":
		return []string{"osascript", "-e", fmt.Sprintf("set volume output volume %d", level)}, nil
	case "windows":
		// nircmd expects 0..65535 for both channels.
		return []string{"nircmd.exe", "setsysvolume", strconv.Itoa(65535 * level / 100)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, c.goos)
	}
}

func (c *Controller) SetVolume(ctx context.Context, level int) error {
	cmd, err := c.VolumeCommand(level)
	if err != nil {
		return err
	}
	_, err = c.runner.Run(ctx, cmd[0], cmd[1:]...)
	return err
}

// OpenURL opens url with the given executable, or the desktop default
// handler when executable is empty.
func (c *Controller) OpenURL(url string, executable string) error {
	if executable != "" {
		return c.runner.Start(executable, url)
	}
	switch c.goos {
	case "linux":
		return c.runner.Start("xdg-open", url)
	case "darwin":
		return c.runner.Start("open", url)
	case "windows":
		return c.runner.Start("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, c.goos)
	}
}

// Launch starts an application by absolute path, or by name through the
// platform launcher when no path is known.
func (c *Controller) Launch(path string, name string, args ...string) error {
	if path != "" {
		return c.runner.Start(path, args...)
	}
	switch c.goos {
	case "darwin":
		return c.runner.Start("open", append([]string{"-a", name, "--args"}, args...)...)
	case "windows":
		return c.runner.Start("cmd", append([]string{"/c", "start", "", name}, args...)...)
	default:
		bin, err := exec.LookPath(name)
		if err != nil {
			return fmt.Errorf("application %q not found: %w", name, err)
		}
		return c.runner.Start(bin, args...)
	}
}

// IsRunning reports whether name is already running on this machine.
func (c *Controller) IsRunning(name string) (bool, error) {
	return IsRunning(name)
}

// IsRunning reports whether a process whose executable name contains name
// is alive.
func IsRunning(name string) (bool, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false, nil
	}
	procs, err := process.Processes()
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}
	for _, p := range procs {
		pname, err := p.Name()
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(pname), name) {
			return true, nil
		}
	}
	return false, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
