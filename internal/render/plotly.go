package render

// Plotly figure JSON. Field names follow plotly.js attribute names so the
// browser can pass a Figure straight to Plotly.newPlot.

// Figure is a complete plotly.js figure.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
	Frames []Frame `json:"frames,omitempty"`
}

// Trace is one scattergeo or choropleth trace.
type Trace struct {
	Type          string    `json:"type"`
	Name          string    `json:"name,omitempty"`
	Mode          string    `json:"mode,omitempty"`
	Lon           []float64 `json:"lon,omitempty"`
	Lat           []float64 `json:"lat,omitempty"`
	Locations     []string  `json:"locations,omitempty"`
	LocationMode  string    `json:"locationmode,omitempty"`
	Z             []float64 `json:"z,omitempty"`
	Text          []string  `json:"text,omitempty"`
	HoverTemplate string    `json:"hovertemplate,omitempty"`
	Marker        *Marker   `json:"marker,omitempty"`

	ColorScale   string    `json:"colorscale,omitempty"`
	ReverseScale bool      `json:"reversescale,omitempty"`
	ZMin         *float64  `json:"zmin,omitempty"`
	ZMax         *float64  `json:"zmax,omitempty"`
	ZMid         *float64  `json:"zmid,omitempty"`
	ColorBar     *ColorBar `json:"colorbar,omitempty"`
}

// Marker styles scattergeo points. Size is either a constant or one value per point.
type Marker struct {
	Size     any     `json:"size,omitempty"`
	SizeMode string  `json:"sizemode,omitempty"`
	SizeRef  float64 `json:"sizeref,omitempty"`
	SizeMin  float64 `json:"sizemin,omitempty"`
	Color    string  `json:"color,omitempty"`
	Opacity  float64 `json:"opacity,omitempty"`
}

// ColorBar labels a continuous color scale.
type ColorBar struct {
	Title Title `json:"title"`
}

// Title is a plotly title object.
type Title struct {
	Text string `json:"text"`
}

// Layout holds figure-level settings.
type Layout struct {
	Title       *Title       `json:"title,omitempty"`
	Geo         Geo          `json:"geo"`
	Sliders     []Slider     `json:"sliders,omitempty"`
	UpdateMenus []UpdateMenu `json:"updatemenus,omitempty"`
}

// Geo configures the geographic subplot.
type Geo struct {
	Scope      string      `json:"scope"`
	Projection *Projection `json:"projection,omitempty"`
	ShowLand   bool        `json:"showland,omitempty"`
	LandColor  string      `json:"landcolor,omitempty"`
}

// Projection selects a map projection.
type Projection struct {
	Type string `json:"type"`
}

// Frame is one animation step.
type Frame struct {
	Name string  `json:"name"`
	Data []Trace `json:"data"`
}

// Slider scrubs through animation frames.
type Slider struct {
	Active       int          `json:"active"`
	CurrentValue CurrentValue `json:"currentvalue"`
	Steps        []SliderStep `json:"steps"`
}

// CurrentValue labels the slider position.
type CurrentValue struct {
	Prefix string `json:"prefix"`
}

// SliderStep jumps to a named frame.
type SliderStep struct {
	Label  string `json:"label"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

// UpdateMenu is a group of buttons, used for play and pause.
type UpdateMenu struct {
	Type       string   `json:"type"`
	ShowActive bool     `json:"showactive"`
	Buttons    []Button `json:"buttons"`
}

// Button triggers a plotly method.
type Button struct {
	Label  string `json:"label"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

const frameDurationMS = 500

func usaGeo() Geo {
	return Geo{
		Scope:      "usa",
		Projection: &Projection{Type: "albers usa"},
		ShowLand:   true,
		LandColor:  "rgb(240, 240, 240)",
	}
}

// animate installs frames plus slider and play/pause controls. The first
// frame doubles as the initial data.
func animate(fig *Figure, frames []Frame, prefix string) {
	if len(frames) == 0 {
		return
	}
	fig.Data = frames[0].Data
	fig.Frames = frames

	steps := make([]SliderStep, len(frames))
	for i, f := range frames {
		steps[i] = SliderStep{
			Label:  f.Name,
			Method: "animate",
			Args: []any{
				[]string{f.Name},
				map[string]any{
					"mode":       "immediate",
					"frame":      map[string]any{"duration": frameDurationMS, "redraw": true},
					"transition": map[string]any{"duration": 0},
				},
			},
		}
	}
	fig.Layout.Sliders = []Slider{{CurrentValue: CurrentValue{Prefix: prefix}, Steps: steps}}
	fig.Layout.UpdateMenus = []UpdateMenu{{
		Type: "buttons",
		Buttons: []Button{
			{
				Label:  "Play",
				Method: "animate",
				Args: []any{nil, map[string]any{
					"frame":       map[string]any{"duration": frameDurationMS, "redraw": true},
					"fromcurrent": true,
				}},
			},
			{
				Label:  "Pause",
				Method: "animate",
				Args: []any{[]any{nil}, map[string]any{
					"mode":  "immediate",
					"frame": map[string]any{"duration": 0, "redraw": false},
				}},
			},
		},
	}}
}

func ptr(v float64) *float64 { return &v }
