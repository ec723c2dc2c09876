// Package report renders session hit charts.
package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ayusman/airdrum/internal/store"
)

// ErrNoHits is returned when a session has nothing to plot.
var ErrNoHits = errors.New("session has no hits")

// Chart size, matching a wide terminal screenshot.
const (
	Width  = 14 * vg.Inch
	Height = 6 * vg.Inch
)

// series is one hand/kind combination.
type series struct {
	Hand string
	Kind string
}

func (s series) label() string {
	return s.Kind + " " + s.Hand
}

var shapes = []draw.GlyphDrawer{
	draw.CircleGlyph{},
	draw.BoxGlyph{},
	draw.TriangleGlyph{},
	draw.CrossGlyph{},
}

var palette = map[series]color.Color{
	{Hand: "left", Kind: "hit-down"}:      color.RGBA{R: 220, G: 50, B: 47, A: 255},
	{Hand: "right", Kind: "hit-down"}:     color.RGBA{R: 38, G: 139, B: 210, A: 255},
	{Hand: "left", Kind: "hit-sideways"}:  color.RGBA{R: 203, G: 75, B: 22, A: 255},
	{Hand: "right", Kind: "hit-sideways"}: color.RGBA{R: 42, G: 161, B: 152, A: 255},
}

// Velocities builds a plot of each hit's velocity against its frame, one
// series per hand and kind. Sideways velocities are plotted as magnitudes.
func Velocities(session *store.Session, hits []*store.Hit) (*plot.Plot, error) {
	if len(hits) == 0 {
		return nil, ErrNoHits
	}

	groups, keys := group(hits)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Session %s - %s (%d hits)", session.ID, session.SchemaName, len(hits))
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Velocity (px/frame)"
	p.X.Min = 0
	if session.Frames > 0 {
		p.X.Max = float64(session.Frames)
	}

	for i, k := range keys {
		scatter, err := plotter.NewScatter(plotter.XYs(groups[k]))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k.label(), err)
		}
		scatter.GlyphStyle.Color = seriesColor(k)
		scatter.GlyphStyle.Radius = vg.Points(4)
		scatter.GlyphStyle.Shape = shapes[i%len(shapes)]

		p.Add(scatter)
		p.Legend.Add(k.label(), scatter)
	}
	p.Add(plotter.NewGrid())

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p, nil
}

// group splits hits into per-series frame/velocity points, returning the
// series in label order. Sideways velocities become magnitudes.
func group(hits []*store.Hit) (map[series][]plotter.XY, []series) {
	groups := make(map[series][]plotter.XY)
	for _, h := range hits {
		key := series{Hand: h.Hand, Kind: h.Kind}
		groups[key] = append(groups[key], plotter.XY{X: float64(h.Frame), Y: math.Abs(h.Velocity)})
	}

	keys := make([]series, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].label() < keys[j].label()
	})
	return groups, keys
}

func seriesColor(k series) color.Color {
	if c, ok := palette[k]; ok {
		return c
	}
	return color.Gray{Y: 96}
}

// SaveSession plots a stored session to path. The format follows the file
// extension (.png, .svg, .pdf).
func SaveSession(st *store.Store, sessionID, path string) (int, error) {
	session, err := st.Sessions().Get(sessionID)
	if err != nil {
		return 0, fmt.Errorf("get session %s: %w", sessionID, err)
	}

	hits, err := st.Hits().ListBySession(sessionID)
	if err != nil {
		return 0, fmt.Errorf("list hits: %w", err)
	}

	p, err := Velocities(session, hits)
	if err != nil {
		return 0, err
	}

	if filepath.Ext(path) == "" {
		path += ".png"
	}
	if err := p.Save(Width, Height, path); err != nil {
		return 0, fmt.Errorf("save plot: %w", err)
	}
	return len(hits), nil
}
