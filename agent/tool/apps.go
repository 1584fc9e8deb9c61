package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
	"github.com/tanpawarit/ultra-assistant/agent/apps"
)

type openApplicationArgs struct {
	AppName   string `json:"app_name"`
	Arguments string `json:"arguments"`
}

type openBrowserArgs struct {
	URL     string `json:"url"`
	Browser string `json:"browser"`
}

type manageSubsetArgs struct {
	Action           string   `json:"action"`
	SubsetName       string   `json:"subset_name"`
	ModificationType string   `json:"modification_type"`
	Apps             []string `json:"apps"`
}

// openApplication never speaks: the app opening is the feedback.
func (h *handlers) openApplication(_ context.Context, args openApplicationArgs) (contractx.ToolResult, error) {
	if h.deps.System == nil {
		return notConfigured("system control").Silenced(), nil
	}
	started, err := h.launch(args.AppName, args.Arguments)
	if err != nil {
		return contractx.Failure(fmt.Sprintf("Error opening %s: %v", args.AppName, err)).Silenced(), nil
	}
	if !started {
		return contractx.Success(map[string]string{"app": args.AppName}).
			WithMessage(args.AppName + " is already running").
			Silenced(), nil
	}
	return contractx.Success(map[string]string{"app": args.AppName}).
		WithMessage("Opened " + args.AppName).
		Silenced(), nil
}

// launch starts the application unless a process by that name is already
// alive. It reports whether a new process was started.
func (h *handlers) launch(name string, arguments string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, errors.New("application name is empty")
	}
	running, err := h.deps.System.IsRunning(name)
	if err != nil {
		log.Debug().Err(err).Str("app", name).Msg("process lookup failed, launching anyway")
	}
	if running {
		return false, nil
	}
	var path string
	if h.deps.Locator != nil {
		path, _ = h.deps.Locator.Find(name)
	}
	return true, h.deps.System.Launch(path, name, strings.Fields(arguments)...)
}

func (h *handlers) openBrowser(_ context.Context, args openBrowserArgs) (contractx.ToolResult, error) {
	if h.deps.System == nil {
		return notConfigured("system control"), nil
	}
	url := strings.TrimSpace(args.URL)
	if !strings.Contains(url, "://") {
		url = "https://" + url
	}
	browser := strings.TrimSpace(args.Browser)
	if browser == "" {
		browser = "default"
	}

	var exe string
	if browser != "default" && h.deps.Locator != nil {
		exe, _ = h.deps.Locator.Find(browser)
	}
	if err := h.deps.System.OpenURL(url, exe); err != nil {
		return contractx.ToolResult{}, err
	}
	return contractx.Success(map[string]string{"url": url, "browser": browser}).
		WithMessage(fmt.Sprintf("Successfully opened %s in %s browser", url, browser)), nil
}

func (h *handlers) manageAppSubset(ctx context.Context, args manageSubsetArgs) (contractx.ToolResult, error) {
	mgr := h.deps.Subsets
	if mgr == nil {
		return notConfigured("app subsets"), nil
	}
	name := strings.ToLower(strings.TrimSpace(args.SubsetName))
	action := strings.ToLower(strings.TrimSpace(args.Action))
	if name == "" && action != "list" {
		return contractx.Failure("subset_name is required"), nil
	}

	switch action {
	case "create":
		if len(args.Apps) == 0 {
			return contractx.Failure("apps are required to create a subset"), nil
		}
		ch, err := mgr.Create(ctx, name, args.Apps)
		if errors.Is(err, apps.ErrNoValidApps) {
			return contractx.Failure("No valid applications provided. Invalid apps: " + strings.Join(ch.Skipped, ", ")), nil
		}
		if err != nil {
			return contractx.ToolResult{}, err
		}
		return changeResult(ch, fmt.Sprintf("Created subset '%s' with applications: %s", name, strings.Join(ch.Applied, ", ")),
			"The following apps were not found and weren't added: "), nil

	case "modify":
		mod := apps.Modification(strings.ToLower(strings.TrimSpace(args.ModificationType)))
		if len(args.Apps) == 0 || mod == "" {
			return contractx.Failure("modification_type and apps are required to modify a subset"), nil
		}
		ch, err := mgr.Modify(ctx, name, mod, args.Apps)
		switch {
		case errors.Is(err, apps.ErrSubsetNotFound):
			return contractx.Failure(fmt.Sprintf("Subset '%s' not found", name)), nil
		case errors.Is(err, apps.ErrInvalidModifier):
			return contractx.Failure("Invalid action. Use 'add' or 'remove'"), nil
		case err != nil:
			return contractx.ToolResult{}, err
		}
		if mod == apps.ModAdd {
			return changeResult(ch, fmt.Sprintf("Added applications to '%s': %s", name, strings.Join(ch.Applied, ", ")),
				"The following apps were not found: "), nil
		}
		return changeResult(ch, fmt.Sprintf("Removed applications from '%s': %s", name, strings.Join(ch.Applied, ", ")),
			"The following apps were not in the subset: "), nil

	case "delete":
		err := mgr.Delete(ctx, name)
		if errors.Is(err, apps.ErrSubsetNotFound) {
			return contractx.Failure(fmt.Sprintf("Subset '%s' not found", name)), nil
		}
		if err != nil {
			return contractx.ToolResult{}, err
		}
		return contractx.Success(nil).WithMessage(fmt.Sprintf("Subset '%s' has been deleted", name)), nil

	case "list":
		subsets, err := mgr.List(ctx)
		if err != nil {
			return contractx.ToolResult{}, err
		}
		return contractx.Success(subsets), nil

	case "open":
		list, err := mgr.Apps(ctx, name)
		if errors.Is(err, apps.ErrSubsetNotFound) {
			return contractx.Failure(fmt.Sprintf("No applications found in subset '%s'", name)).Silenced(), nil
		}
		if err != nil {
			return contractx.ToolResult{}, err
		}
		if h.deps.System == nil {
			return notConfigured("system control").Silenced(), nil
		}
		results := make([]string, 0, len(list))
		for _, app := range list {
			started, err := h.launch(app, "")
			switch {
			case err != nil:
				results = append(results, fmt.Sprintf("Failed to open %s: %v", app, err))
			case !started:
				results = append(results, app+" is already running")
			default:
				results = append(results, "Opened "+app)
			}
		}
		return contractx.Success(results).
			WithMessage(fmt.Sprintf("Opening applications in subset '%s'", name)).
			Silenced(), nil
	}
	return contractx.Failure("Invalid action or missing required parameters"), nil
}

func changeResult(ch apps.Change, msg string, warnPrefix string) contractx.ToolResult {
	payload := map[string]any{"applied": ch.Applied}
	if len(ch.Skipped) > 0 {
		payload["warning"] = warnPrefix + strings.Join(ch.Skipped, ", ")
	}
	return contractx.Success(payload).WithMessage(msg)
}
