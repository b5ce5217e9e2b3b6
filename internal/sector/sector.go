// Package sector turns live ball and player positions into cone
// descriptions: player action sectors, the attack cone and block shadows.
package sector

import (
	"math"

	"defense-planner/internal/court"
	"defense-planner/internal/spatial"
)

// Compute derives the action sector of a player at anchor facing target.
// The radius is capped where the anchor->target line meets the net.
func Compute(anchor, target spatial.Point, p Params, c court.Court) Arc {
	var view float64
	if p.Backwards {
		view = spatial.AngleTo(target, anchor)
	} else {
		view = spatial.AngleTo(anchor, target)
	}

	radius := c.Pixels(p.MaxRadiusMeters)
	if !anchor.Equal(target) {
		if hit, ok := spatial.NetIntersection(anchor, target, c.NetY); ok {
			radius = math.Min(radius, spatial.Distance(anchor, hit))
		}
	}

	return Arc{
		Center:     anchor,
		StartAngle: view - p.AngleWidth/2,
		SweepAngle: p.AngleWidth,
		Radius:     radius,
	}
}

// Attack is the cone from the ball to both net posts. Its radius reaches
// the far baseline and collapses to zero when the ball is past it.
func Attack(ball spatial.Point, c court.Court) Arc {
	left := c.LeftPost()
	right := c.RightPost()
	angleLeft := degrees(math.Atan2(ball.Y-left.Y, left.X-ball.X))
	angleRight := degrees(math.Atan2(ball.Y-right.Y, right.X-ball.X))

	return Arc{
		Center:     ball,
		StartAngle: angleLeft,
		SweepAngle: angleRight - angleLeft,
		Radius:     math.Max(0, 2*c.NetY-ball.Y),
	}
}

// ShadowParams size the block shadow.
type ShadowParams struct {
	Range        float64 `json:"range" yaml:"range"`
	ArcRadius    float64 `json:"arc_radius" yaml:"arc_radius"`
	PlayerRadius float64 `json:"player_radius" yaml:"-"`
}

// DefaultShadowParams match a 20 px player marker.
func DefaultShadowParams() ShadowParams {
	return ShadowParams{Range: 150, ArcRadius: 250, PlayerRadius: 10}
}

// ShadowArc is a block shadow cast from the ball past a player. FadeStart
// is the fraction of the radius where the player stands; renderers keep
// the cone transparent inside it.
type ShadowArc struct {
	Arc
	FadeStart float64 `json:"fade_start"`
}

// Shadow returns the cone hidden behind a player as seen from the ball. It
// reports false when the player sits on the ball or is out of range.
func Shadow(ball, player spatial.Point, p ShadowParams) (ShadowArc, bool) {
	dx := player.X - ball.X
	dy := player.Y - ball.Y
	d := math.Hypot(dx, dy)
	if d == 0 || d+2*p.PlayerRadius > p.Range {
		return ShadowArc{}, false
	}

	theta := math.Atan2(dy, dx)
	alpha := math.Asin(math.Min(p.PlayerRadius/d, 1))

	fade := 0.0
	if p.ArcRadius > 0 {
		fade = math.Max(0, math.Min(d/p.ArcRadius, 1))
	}

	return ShadowArc{
		Arc: Arc{
			Center:     ball,
			StartAngle: -degrees(theta - alpha),
			SweepAngle: -degrees(2 * alpha),
			Radius:     p.ArcRadius,
		},
		FadeStart: fade,
	}, true
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
