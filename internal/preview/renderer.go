// Package preview renders top-down frames of game snapshots. The xz-plane
// is projected onto the image with +z pointing down, so a frame reads like
// a map of the active zone.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"log"
	"math"
	"strings"
	"sync"

	"lost-algorithm/internal/game"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Config sizes the output frame.
type Config struct {
	Width  int
	Height int
	// WorldExtent is the half-width of the world square mapped onto the frame.
	WorldExtent float64
}

// DefaultConfig returns a 640x480 frame covering the whole play area.
func DefaultConfig() Config {
	return Config{Width: 640, Height: 480, WorldExtent: 12}
}

const headerHeight = 40.0

var (
	backgroundColor = color.RGBA{12, 12, 28, 255}
	gridColor       = color.RGBA{30, 30, 45, 255}
	panelColor      = color.RGBA{18, 18, 24, 245}
	accentColor     = color.RGBA{0, 212, 255, 255}
	mutedColor      = color.RGBA{160, 165, 180, 255}
)

// entityRadius is the drawn radius in world units per kind.
var entityRadius = map[game.EntityKind]float64{
	game.KindGlobe:    2,
	game.KindPortal:   0.35,
	game.KindTree:     1,
	game.KindBoulder:  0.8,
	game.KindTarget:   1,
	game.KindPlanet:   1,
	game.KindRing:     1.4,
	game.KindSlider:   0.4,
	game.KindButton:   0.6,
	game.KindKelp:     0.3,
	game.KindTreasure: 0.7,
	game.KindCrystal:  0.5,
}

// Renderer draws snapshots with a single reused gg context.
type Renderer struct {
	cfg   Config
	scale float64 // pixels per world unit

	mu sync.Mutex
	dc *gg.Context

	fontSmall font.Face
	fontLarge font.Face
}

// NewRenderer creates a renderer. Fonts are parsed once here, not per frame.
func NewRenderer(cfg Config) *Renderer {
	def := DefaultConfig()
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	if cfg.WorldExtent <= 0 {
		cfg.WorldExtent = def.WorldExtent
	}

	r := &Renderer{
		cfg:   cfg,
		scale: math.Min(float64(cfg.Width), float64(cfg.Height)-headerHeight) / (2 * cfg.WorldExtent),
		dc:    gg.NewContext(cfg.Width, cfg.Height),
	}
	r.loadFonts()
	return r
}

// loadFonts falls back to the fixed 7x13 face if the TTF cannot be used
func (r *Renderer) loadFonts() {
	r.fontSmall = basicfont.Face7x13
	r.fontLarge = basicfont.Face7x13

	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Printf("⚠️ Failed to parse preview font: %v", err)
		return
	}
	small, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: 13, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Printf("⚠️ Failed to create small font face: %v", err)
		return
	}
	large, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: 28, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Printf("⚠️ Failed to create large font face: %v", err)
		return
	}
	r.fontSmall, r.fontLarge = small, large
}

// Project maps a world position to frame pixels.
func (r *Renderer) Project(p game.Vec3) (x, y float64) {
	cx := float64(r.cfg.Width) / 2
	cy := headerHeight + (float64(r.cfg.Height)-headerHeight)/2
	return cx + p.X*r.scale, cy + p.Z*r.scale
}

// RenderPNG draws snap and encodes it as PNG.
func (r *Renderer) RenderPNG(w io.Writer, snap *game.GameSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.draw(snap)
	if err := r.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}

// Render draws snap and returns a copy of the frame.
func (r *Renderer) Render(snap *game.GameSnapshot) image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.draw(snap)
	src := r.dc.Image()
	out := image.NewRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out
}

func (r *Renderer) draw(snap *game.GameSnapshot) {
	dc := r.dc
	r.drawBackground(dc)
	if snap == nil {
		return
	}

	r.drawStars(dc, snap)
	for _, e := range snap.Entities {
		if e.Hidden || e.Kind == game.KindStars {
			continue
		}
		r.drawEntity(dc, e, e.ID == snap.Hovered)
	}
	r.drawParticles(dc, snap.Particles)
	r.drawHeader(dc, snap)

	if snap.State.Victory && snap.State.CurrentZone == game.ZoneHome {
		r.drawVictory(dc)
	} else if snap.Banner != "" {
		r.drawBanner(dc, snap.Banner)
	}
}

func (r *Renderer) drawBackground(dc *gg.Context) {
	dc.SetColor(backgroundColor)
	dc.DrawRectangle(0, 0, float64(r.cfg.Width), float64(r.cfg.Height))
	dc.Fill()

	// One line per two world units
	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	for u := -r.cfg.WorldExtent; u <= r.cfg.WorldExtent; u += 2 {
		x0, y0 := r.Project(game.V(u, 0, -r.cfg.WorldExtent))
		x1, y1 := r.Project(game.V(u, 0, r.cfg.WorldExtent))
		dc.DrawLine(x0, y0, x1, y1)
		dc.Stroke()

		x0, y0 = r.Project(game.V(-r.cfg.WorldExtent, 0, u))
		x1, y1 = r.Project(game.V(r.cfg.WorldExtent, 0, u))
		dc.DrawLine(x0, y0, x1, y1)
		dc.Stroke()
	}
}

func (r *Renderer) drawStars(dc *gg.Context, snap *game.GameSnapshot) {
	if len(snap.Stars) == 0 {
		return
	}
	c := parseHexColor(snap.StarColor)
	c.A = 160
	dc.SetColor(c)
	for _, s := range snap.Stars {
		x, y := r.Project(s)
		dc.DrawCircle(x, y, 1)
		dc.Fill()
	}
}

func (r *Renderer) drawEntity(dc *gg.Context, e game.EntitySnapshot, hovered bool) {
	x, y := r.Project(e.Position)
	radius := entityRadius[e.Kind] * r.scale
	if radius < 3 {
		radius = 3
	}
	c := parseHexColor(e.Color)

	// Glow ring for emissive entities
	if e.Emissive > 0 {
		glow := c
		glow.A = uint8(math.Min(e.Emissive, 1) * 160)
		dc.SetColor(glow)
		dc.DrawCircle(x, y, radius*1.4)
		dc.Fill()
	}

	switch e.Kind {
	case game.KindTarget:
		// Drop zones are outlines so boulders stay visible on top
		dc.SetColor(c)
		dc.SetLineWidth(2)
		dc.DrawCircle(x, y, radius)
		dc.Stroke()
	case game.KindRing:
		dc.SetColor(c)
		dc.SetLineWidth(3)
		dc.DrawCircle(x, y, radius)
		dc.Stroke()
	case game.KindSlider:
		r.drawSlider(dc, e, x, y)
	default:
		dc.SetColor(c)
		dc.DrawCircle(x, y, radius)
		dc.Fill()
	}

	if hovered {
		dc.SetColor(color.White)
		dc.SetLineWidth(2)
		dc.DrawCircle(x, y, radius+3)
		dc.Stroke()
	}

	if e.Label != "" && e.Kind != game.KindSlider {
		dc.SetFontFace(r.fontSmall)
		dc.SetColor(color.White)
		dc.DrawStringAnchored(e.Label, x, y-radius-8, 0.5, 0.5)
	}
}

// drawSlider draws a horizontal track two world units wide with a knob at Value.
func (r *Renderer) drawSlider(dc *gg.Context, e game.EntitySnapshot, x, y float64) {
	half := r.scale
	dc.SetColor(mutedColor)
	dc.SetLineWidth(2)
	dc.DrawLine(x-half, y, x+half, y)
	dc.Stroke()

	dc.SetColor(parseHexColor(e.Color))
	dc.DrawCircle(x-half+2*half*e.Value, y, 5)
	dc.Fill()

	dc.SetFontFace(r.fontSmall)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(fmt.Sprintf("%s %.2f", e.Label, e.Value), x, y+14, 0.5, 0.5)
}

func (r *Renderer) drawParticles(dc *gg.Context, particles []game.ParticleSnapshot) {
	for _, p := range particles {
		c := parseHexColor(p.Color)
		c.A = 220
		dc.SetColor(c)
		x, y := r.Project(p.Position)
		dc.DrawCircle(x, y, 2)
		dc.Fill()
	}
}

func (r *Renderer) drawHeader(dc *gg.Context, snap *game.GameSnapshot) {
	w := float64(r.cfg.Width)
	s := snap.State

	dc.SetColor(panelColor)
	dc.DrawRectangle(0, 0, w, headerHeight)
	dc.Fill()

	dc.SetFontFace(r.fontSmall)
	dc.SetColor(color.White)
	dc.DrawStringAnchored("LOST ALGORITHM RECOVERY", 12, headerHeight/2, 0, 0.5)
	dc.SetColor(accentColor)
	dc.DrawStringAnchored(strings.ToUpper(string(s.CurrentZone)), w/2, headerHeight/2, 0.5, 0.5)

	// Progress bar
	barW, barH := 140.0, 10.0
	barX, barY := w-barW-70, headerHeight/2-barH/2
	dc.SetColor(color.RGBA{51, 51, 51, 255})
	dc.DrawRoundedRectangle(barX, barY, barW, barH, 3)
	dc.Fill()
	if s.Progress > 0 {
		dc.SetColor(accentColor)
		dc.DrawRoundedRectangle(barX, barY, barW*s.Progress, barH, 3)
		dc.Fill()
	}
	dc.SetColor(color.White)
	dc.DrawStringAnchored(fmt.Sprintf("%d/%d", s.Fragments, s.TotalFragments), barX+barW+10, headerHeight/2, 0, 0.5)

	if snap.Cue.Playing() {
		dc.SetColor(color.RGBA{255, 200, 0, 255})
		dc.DrawStringAnchored("♪ "+string(snap.Cue.Kind), w/2+80, headerHeight/2, 0, 0.5)
	}
}

func (r *Renderer) drawBanner(dc *gg.Context, text string) {
	w, h := float64(r.cfg.Width), float64(r.cfg.Height)
	dc.SetColor(panelColor)
	dc.DrawRoundedRectangle(w*0.1, h-50, w*0.8, 36, 6)
	dc.Fill()
	dc.SetFontFace(r.fontSmall)
	dc.SetColor(color.RGBA{34, 197, 94, 255})
	dc.DrawStringAnchored(text, w/2, h-32, 0.5, 0.5)
}

func (r *Renderer) drawVictory(dc *gg.Context) {
	w, h := float64(r.cfg.Width), float64(r.cfg.Height)
	dc.SetColor(color.RGBA{0, 0, 0, 160})
	dc.DrawRectangle(0, headerHeight, w, h-headerHeight)
	dc.Fill()

	dc.SetFontFace(r.fontLarge)
	dc.SetColor(color.RGBA{255, 215, 0, 255})
	dc.DrawStringAnchored("Congratulations!", w/2, h/2-20, 0.5, 0.5)

	dc.SetFontFace(r.fontSmall)
	dc.SetColor(color.White)
	dc.DrawStringAnchored("The Lost Algorithm has been restored.", w/2, h/2+20, 0.5, 0.5)
}

// parseHexColor reads "#RRGGBB"; anything else is white.
func parseHexColor(hex string) color.RGBA {
	if len(hex) != 7 || hex[0] != '#' {
		return color.RGBA{255, 255, 255, 255}
	}

	var r, g, b uint8
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{255, 255, 255, 255}
	}
	return color.RGBA{r, g, b, 255}
}
