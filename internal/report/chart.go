package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ayusman/airdrum/internal/store"
)

// Timeline builds an interactive HTML scatter of hit velocities against
// frame number, one series per hand and kind.
func Timeline(session *store.Session, hits []*store.Hit) (*charts.Scatter, error) {
	if len(hits) == 0 {
		return nil, ErrNoHits
	}

	groups, keys := group(hits)

	xAxis := opts.XAxis{Type: "value", Name: "Frame", NameLocation: "middle", NameGap: 25, Min: 0}
	if session.Frames > 0 {
		xAxis.Max = session.Frames
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "airdrum session " + session.ID, Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Session %s (%d hits)", session.ID, len(hits)),
			Subtitle: fmt.Sprintf("schema=%s started=%s", session.SchemaName, session.StartedAt.Format(time.RFC3339)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(opts.YAxis{Name: "Velocity (px/frame)", NameLocation: "middle", NameGap: 30}),
	)

	for _, k := range keys {
		pts := make([]opts.ScatterData, 0, len(groups[k]))
		for _, xy := range groups[k] {
			pts = append(pts, opts.ScatterData{Value: []interface{}{xy.X, xy.Y}})
		}
		scatter.AddSeries(k.label(), pts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	}

	return scatter, nil
}

// RenderTimeline writes the Timeline page for a stored session.
func RenderTimeline(w io.Writer, st *store.Store, sessionID string) error {
	session, err := st.Sessions().Get(sessionID)
	if err != nil {
		return fmt.Errorf("get session %s: %w", sessionID, err)
	}

	hits, err := st.Hits().ListBySession(sessionID)
	if err != nil {
		return fmt.Errorf("list hits: %w", err)
	}

	scatter, err := Timeline(session, hits)
	if err != nil {
		return err
	}
	return scatter.Render(w)
}
