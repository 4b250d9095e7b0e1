package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/survey.planner/internal/survey/l1geom"
	"github.com/banshee-data/survey.planner/internal/survey/l4route"
	"github.com/banshee-data/survey.planner/internal/survey/l6stats"
)

// ErrNothingToDraw is returned when the input has no path.
var ErrNothingToDraw = errors.New("report: segment has no waypoints")

// PlotSize is the side of the square PNG plan view.
const PlotSize = 8 * vg.Inch

// circleSides is how finely obstacle circles are approximated.
const circleSides = 32

var (
	targetColor   = color.RGBA{R: 40, G: 120, B: 40, A: 255}
	targetFill    = color.RGBA{R: 40, G: 160, B: 40, A: 40}
	obbColor      = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	pathColor     = color.RGBA{R: 30, G: 80, B: 200, A: 255}
	captureColor  = color.RGBA{R: 220, G: 120, B: 0, A: 255}
	obstacleColor = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	obstacleFill  = color.RGBA{R: 200, G: 30, B: 30, A: 60}
	homeColor     = color.Black
)

// Input is everything the renderers draw. Only Segment is required.
type Input struct {
	Title     string
	Target    []r2.Vec
	OBB       *l1geom.OBBResult
	Segment   *l4route.PathSegment
	Obstacles []l4route.ObstacleFootprint
	Stats     *l6stats.MissionStats
	// SpeedUnits picks the display units (see package units).
	SpeedUnits string
	// AssetsHost serves the echarts javascript in the HTML report. Empty
	// uses the go-echarts default CDN.
	AssetsHost string
}

func (in Input) title() string {
	if in.Title != "" {
		return in.Title
	}
	if in.Segment != nil && in.Segment.ID != "" {
		return "Survey " + in.Segment.ID
	}
	return "Survey plan"
}

// NewPlanView builds the top-down plot: target polygon, bounding box,
// obstacles, the flight path and capture points.
func NewPlanView(in Input) (*plot.Plot, error) {
	if in.Segment == nil || len(in.Segment.Waypoints) == 0 {
		return nil, ErrNothingToDraw
	}

	p := plot.New()
	p.Title.Text = in.title()
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(plotter.NewGrid())

	if len(in.Target) >= 3 {
		poly, err := plotter.NewPolygon(closedXYs(in.Target))
		if err != nil {
			return nil, fmt.Errorf("target polygon: %w", err)
		}
		poly.Color = targetFill
		poly.LineStyle.Color = targetColor
		poly.LineStyle.Width = vg.Points(1.5)
		p.Add(poly)
		p.Legend.Add("target", poly)
	}

	if in.OBB != nil {
		corners := in.OBB.Corners()
		box, err := plotter.NewLine(closedXYs(corners[:]))
		if err != nil {
			return nil, fmt.Errorf("bounding box: %w", err)
		}
		box.Color = obbColor
		box.Width = vg.Points(1)
		box.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(box)
		p.Legend.Add("bounding box", box)
	}

	legend := false
	for i, o := range in.Obstacles {
		if !o.IsObstacle {
			continue
		}
		poly, err := plotter.NewPolygon(circleXYs(o.Center, o.Radius()))
		if err != nil {
			return nil, fmt.Errorf("obstacle %d: %w", i, err)
		}
		poly.Color = obstacleFill
		poly.LineStyle.Color = obstacleColor
		poly.LineStyle.Width = vg.Points(1)
		p.Add(poly)
		if !legend {
			p.Legend.Add("obstacle", poly)
			legend = true
		}
	}

	wps := in.Segment.Waypoints
	path := make(plotter.XYs, len(wps))
	var captures plotter.XYs
	for i, w := range wps {
		path[i] = plotter.XY{X: w.Local.X, Y: w.Local.Y}
		if w.HasCapture() {
			captures = append(captures, path[i])
		}
	}

	line, err := plotter.NewLine(path)
	if err != nil {
		return nil, fmt.Errorf("path: %w", err)
	}
	line.Color = pathColor
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("flight path", line)

	if len(captures) > 0 {
		sc, err := plotter.NewScatter(captures)
		if err != nil {
			return nil, fmt.Errorf("captures: %w", err)
		}
		sc.GlyphStyle.Color = captureColor
		sc.GlyphStyle.Radius = vg.Points(2)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add("photo", sc)
	}

	home, err := plotter.NewScatter(plotter.XYs{path[0]})
	if err != nil {
		return nil, fmt.Errorf("home: %w", err)
	}
	home.GlyphStyle.Color = homeColor
	home.GlyphStyle.Radius = vg.Points(4)
	home.GlyphStyle.Shape = draw.TriangleGlyph{}
	p.Add(home)
	p.Legend.Add("takeoff", home)

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p, nil
}

// WritePlanView renders the plan view as PNG to w.
func WritePlanView(in Input, w io.Writer) error {
	p, err := NewPlanView(in)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(PlotSize, PlotSize, "png")
	if err != nil {
		return fmt.Errorf("plan view writer: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func closedXYs(pts []r2.Vec) plotter.XYs {
	xys := make(plotter.XYs, 0, len(pts)+1)
	for _, v := range pts {
		xys = append(xys, plotter.XY{X: v.X, Y: v.Y})
	}
	if len(pts) > 0 {
		xys = append(xys, xys[0])
	}
	return xys
}

func circleXYs(c r2.Vec, radius float64) plotter.XYs {
	xys := make(plotter.XYs, circleSides)
	for i := range xys {
		a := 2 * math.Pi * float64(i) / circleSides
		xys[i] = plotter.XY{X: c.X + radius*math.Cos(a), Y: c.Y + radius*math.Sin(a)}
	}
	return xys
}
