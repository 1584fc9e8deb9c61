package tool

import (
	"github.com/cloudwego/eino/schema"
)

// Name is the closed set of tools the assistant exposes.
type Name string

const (
	SearchGoogle          Name = "search_google"
	GetCurrentWeather     Name = "get_current_weather"
	UseCalculator         Name = "use_calculator"
	PersonalMemory        Name = "personal_memory"
	SearchAndPlaySong     Name = "search_and_play_song"
	ToggleSpotifyPlayback Name = "toggle_spotify_playback"
	SetSpotifyVolume      Name = "set_spotify_volume"
	SetSystemVolume       Name = "set_system_volume"
	GetCurrentDatetime    Name = "get_current_datetime"
	ControlPC             Name = "control_pc"
	OpenApplication       Name = "open_application"
	OpenBrowser           Name = "open_browser"
	ManageAppSubset       Name = "manage_app_subset"
)

var allNames = []Name{
	SearchGoogle,
	GetCurrentWeather,
	UseCalculator,
	PersonalMemory,
	SearchAndPlaySong,
	ToggleSpotifyPlayback,
	SetSpotifyVolume,
	SetSystemVolume,
	GetCurrentDatetime,
	ControlPC,
	OpenApplication,
	OpenBrowser,
	ManageAppSubset,
}

func Names() []Name {
	return append([]Name(nil), allNames...)
}

func (n Name) Valid() bool {
	for _, known := range allNames {
		if n == known {
			return true
		}
	}
	return false
}

type Param struct {
	Type     schema.DataType
	Desc     string
	Required bool
	Enum     []string
	// Items is the element type when Type is schema.Array.
	Items schema.DataType
}

type Schema struct {
	Desc   string
	Params map[string]Param
}

type Declaration struct {
	Name   Name
	Schema Schema
}

func (d Declaration) ToolInfo() *schema.ToolInfo {
	params := make(map[string]*schema.ParameterInfo, len(d.Schema.Params))
	for key, p := range d.Schema.Params {
		info := &schema.ParameterInfo{
			Type:     p.Type,
			Desc:     p.Desc,
			Required: p.Required,
			Enum:     p.Enum,
		}
		if p.Type == schema.Array {
			info.ElemInfo = &schema.ParameterInfo{Type: p.Items}
		}
		params[key] = info
	}
	return &schema.ToolInfo{
		Name:        string(d.Name),
		Desc:        d.Schema.Desc,
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}
}

// Catalog is the tool surface advertised to the planner. The registry is
// checked against it at startup.
func Catalog() []Declaration {
	return []Declaration{
		{SearchGoogle, Schema{
			Desc: "Search the web for up-to-date information and return the top result with its page content.",
			Params: map[string]Param{
				"searchquery": {Type: schema.String, Desc: "What to search for", Required: true},
			},
		}},
		{GetCurrentWeather, Schema{
			Desc: "Get current weather conditions and today's forecast for a location.",
			Params: map[string]Param{
				"location": {Type: schema.String, Desc: "City name; defaults to the user's home location"},
				"unit":     {Type: schema.String, Desc: "Temperature unit", Enum: []string{"celsius", "fahrenheit"}},
			},
		}},
		{UseCalculator, Schema{
			Desc: "Evaluate arithmetic expressions or solve single-variable equations. Separate multiple tasks with commas, e.g. \"2+2, x^2 = 16\".",
			Params: map[string]Param{
				"input_string": {Type: schema.String, Desc: "Expressions or equations to compute", Required: true},
			},
		}},
		{PersonalMemory, Schema{
			Desc: "Store, retrieve, or clear facts the user asked to remember.",
			Params: map[string]Param{
				"operation": {Type: schema.String, Desc: "Memory operation", Required: true, Enum: []string{"store", "retrieve", "clear"}},
				"data":      {Type: schema.String, Desc: "Fact to store; required for store"},
			},
		}},
		{SearchAndPlaySong, Schema{
			Desc: "Search Spotify for a song and start playing it.",
			Params: map[string]Param{
				"song_name": {Type: schema.String, Desc: "Song title, optionally with the artist", Required: true},
			},
		}},
		{ToggleSpotifyPlayback, Schema{
			Desc: "Pause, unpause, or toggle Spotify playback.",
			Params: map[string]Param{
				"action": {Type: schema.String, Desc: "Playback action", Required: true, Enum: []string{"pause", "unpause", "toggle"}},
			},
		}},
		{SetSpotifyVolume, Schema{
			Desc: "Set the Spotify playback volume.",
			Params: map[string]Param{
				"volume_percent": {Type: schema.Integer, Desc: "Volume from 0 to 100", Required: true},
			},
		}},
		{SetSystemVolume, Schema{
			Desc: "Set the computer's master volume.",
			Params: map[string]Param{
				"volume_level": {Type: schema.Integer, Desc: "Volume from 0 to 100", Required: true},
			},
		}},
		{GetCurrentDatetime, Schema{
			Desc: "Get the current local date, time, or both.",
			Params: map[string]Param{
				"mode": {Type: schema.String, Desc: "What to return", Enum: []string{"date", "time", "date & time"}},
			},
		}},
		{ControlPC, Schema{
			Desc: "Restart, shut down, sleep, or lock the computer.",
			Params: map[string]Param{
				"action": {Type: schema.String, Desc: "Power action", Required: true, Enum: []string{"restart", "shutdown", "sleep", "lock"}},
				"delay":  {Type: schema.Integer, Desc: "Seconds to wait before acting"},
			},
		}},
		{OpenApplication, Schema{
			Desc: "Open an installed application by name.",
			Params: map[string]Param{
				"app_name":  {Type: schema.String, Desc: "Application name", Required: true},
				"arguments": {Type: schema.String, Desc: "Command line arguments"},
			},
		}},
		{OpenBrowser, Schema{
			Desc: "Open a URL in the default or a named browser.",
			Params: map[string]Param{
				"url":     {Type: schema.String, Desc: "URL to open", Required: true},
				"browser": {Type: schema.String, Desc: "Browser name, or \"default\""},
			},
		}},
		{ManageAppSubset, Schema{
			Desc: "Create, modify, delete, list, or open named groups of applications.",
			Params: map[string]Param{
				"action":            {Type: schema.String, Desc: "Subset action", Required: true, Enum: []string{"create", "modify", "delete", "list", "open"}},
				"subset_name":       {Type: schema.String, Desc: "Subset name; not needed for list"},
				"modification_type": {Type: schema.String, Desc: "For modify: add or remove", Enum: []string{"add", "remove"}},
				"apps":              {Type: schema.Array, Items: schema.String, Desc: "Application names"},
			},
		}},
	}
}
