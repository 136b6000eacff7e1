// Package tui draws the game in a terminal and turns key presses into
// text commands.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"lost-algorithm/internal/config"
	"lost-algorithm/internal/game"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// sceneExtent is the world half-width mapped onto the scene area.
const sceneExtent = 6.0

const progressBarWidth = 20

var (
	styleBase     = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleDim      = styleBase.Foreground(tcell.ColorGray)
	styleTitle    = styleBase.Foreground(tcell.ColorAqua).Bold(true)
	styleCurrent  = styleBase.Reverse(true).Bold(true)
	styleError    = styleBase.Foreground(tcell.ColorRed)
	styleSuccess  = styleBase.Foreground(tcell.ColorGreen).Bold(true)
	styleSelected = styleBase.Foreground(tcell.ColorYellow).Bold(true)
)

// Composer renders snapshots onto a tcell screen and routes input to a
// CommandSink.
type Composer struct {
	screen   tcell.Screen
	source   SnapshotSource
	sink     CommandSink
	catalog  *config.ZoneCatalog
	controls *Controls

	showHelp  bool
	prompting bool
	prompt    []rune
	message   string
	failed    bool
}

// NewComposer creates a composer. A nil catalog falls back to the embedded one.
func NewComposer(screen tcell.Screen, source SnapshotSource, sink CommandSink, catalog *config.ZoneCatalog) *Composer {
	if catalog == nil {
		catalog = config.MustDefaultZoneCatalog()
	}
	return &Composer{
		screen:   screen,
		source:   source,
		sink:     sink,
		catalog:  catalog,
		controls: NewControls(),
	}
}

// Run redraws at fps and handles input until the user quits or ctx ends.
func (c *Composer) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 15
	}

	// Async input reader, stopped by screen.Fini.
	events := make(chan tcell.Event, 32)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	c.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok || !c.HandleEvent(ev) {
				return nil
			}
			c.Draw()
		case <-ticker.C:
			c.Draw()
		}
	}
}

// HandleEvent applies one terminal event and reports whether to keep running.
func (c *Composer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		c.screen.Sync()
	case *tcell.EventKey:
		if c.prompting {
			c.promptKey(ev)
			return true
		}
		action, line := c.controls.Key(ev, c.source.GetSnapshot())
		switch action {
		case ActionQuit:
			return false
		case ActionHelp:
			c.showHelp = !c.showHelp
		case ActionPrompt:
			c.prompting = true
			c.prompt = c.prompt[:0]
		case ActionCommand:
			c.submit(line)
		}
	}
	return true
}

func (c *Composer) promptKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		c.prompting = false
	case tcell.KeyEnter:
		c.prompting = false
		if line := strings.TrimSpace(string(c.prompt)); line != "" {
			c.submit(line)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(c.prompt); n > 0 {
			c.prompt = c.prompt[:n-1]
		}
	case tcell.KeyRune:
		c.prompt = append(c.prompt, ev.Rune())
	}
}

func (c *Composer) submit(line string) {
	msg, err := c.sink.Submit(line)
	c.failed = err != nil
	if err != nil {
		c.message = err.Error()
		return
	}
	c.message = msg
}

// Message returns the text shown on the message line.
func (c *Composer) Message() string {
	if c.message == "" {
		if rs, ok := c.sink.(replySource); ok {
			return rs.LastMessage()
		}
	}
	return c.message
}

// Draw renders the latest snapshot and shows it.
func (c *Composer) Draw() {
	c.DrawSnapshot(c.source.GetSnapshot())
	c.screen.Show()
}

// DrawSnapshot renders snap without flushing the screen.
func (c *Composer) DrawSnapshot(snap *game.GameSnapshot) {
	s := c.screen
	s.SetStyle(styleBase)
	s.Clear()
	w, h := s.Size()

	if snap == nil {
		drawText(s, 1, 0, w, "Waiting for game state...", styleDim)
		c.drawFooter(h-1, w)
		return
	}

	c.drawHeader(snap, w)
	c.drawNav(snap, w)
	scene := rect{x: 0, y: 3, w: w, h: max(h-6, 1)}
	c.drawScene(snap, scene)
	drawText(s, 1, h-3, w, c.statusLine(snap), styleBase)
	c.drawMessage(snap, h-2, w)
	c.drawFooter(h-1, w)

	if snap.State.Victory && snap.State.CurrentZone == game.ZoneHome {
		c.drawVictory(scene)
	}
	if c.showHelp {
		c.drawHelp(snap.State.CurrentZone, scene)
	}
}

func (c *Composer) drawHeader(snap *game.GameSnapshot, w int) {
	s := c.screen
	st := snap.State
	x := drawText(s, 1, 0, w, c.catalog.Title, styleTitle)

	filled := int(math.Round(st.Progress * progressBarWidth))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
	x = drawText(s, x+2, 0, w, bar, styleSuccess)
	x = drawText(s, x+1, 0, w, fmt.Sprintf("Fragments: %d/%d", st.Fragments, st.TotalFragments), styleBase)

	if snap.Cue.Playing() {
		putGlyph(s, x+2, 0, snap.Cue.Kind.Glyph(), styleBase)
	}
}

// drawNav draws one button per zone: current, enabled or disabled.
func (c *Composer) drawNav(snap *game.GameSnapshot, w int) {
	s := c.screen
	enabled := make(map[game.ZoneID]bool, len(snap.State.NavEnabled))
	for _, z := range snap.State.NavEnabled {
		enabled[z] = true
	}

	x := 1
	for _, z := range game.ZoneOrder {
		spec, _ := c.catalog.Zone(string(z))
		style := styleDim
		switch {
		case z == snap.State.CurrentZone:
			style = styleCurrent
		case enabled[z]:
			style = styleBase
		}
		label := fmt.Sprintf(" %s %s ", spec.Icon, spec.Name)
		x = drawText(s, x, 1, w, label, style) + 1
	}
	fillRow(s, 2, w, styleDim)
	drawText(s, 0, 2, w, strings.Repeat("─", w), styleDim)
}

// project maps the xz-plane onto the scene area. Height is ignored.
func project(p game.Vec3, r rect) (int, int) {
	sx := float64(r.w/2-2) / sceneExtent
	sy := float64(r.h/2) / sceneExtent
	return r.x + r.w/2 + int(math.Round(p.X*sx)), r.y + r.h/2 + int(math.Round(p.Z*sy))
}

func (c *Composer) drawScene(snap *game.GameSnapshot, r rect) {
	s := c.screen
	boulders := mountainBoulders(snap)
	selectedBoulder := -1
	if len(boulders) > 0 {
		selectedBoulder = boulders[c.controls.SelectedBoulder()%len(boulders)].ID
	}

	for _, e := range snap.Entities {
		if e.Hidden {
			continue
		}
		glyph := c.glyphFor(e)
		if glyph == "" {
			continue
		}
		x, y := project(e.Position, r)
		if x < r.x || x >= r.x+r.w-1 || y < r.y || y >= r.y+r.h {
			continue
		}

		style := styleBase.Foreground(tcell.GetColor(e.Color))
		switch e.Kind {
		case game.KindPortal:
			if !e.Active {
				style = styleDim
			}
		case game.KindBoulder:
			if id, ok := entityID(e.ID, "boulder:"); ok && id == selectedBoulder {
				style = styleSelected
			}
		case game.KindSlider:
			if game.Channel(strings.ToLower(e.Label)) == c.controls.SelectedChannel() {
				style = styleSelected
			}
		}
		if snap.Hovered == e.ID {
			style = style.Underline(true)
		}

		gw := putGlyph(s, x, y, glyph, style)
		if label := entityLabel(e); label != "" {
			drawText(s, x+gw, y, r.x+r.w, label, style)
		}
	}
}

func (c *Composer) glyphFor(e game.EntitySnapshot) string {
	switch e.Kind {
	case game.KindGlobe:
		return "🌍"
	case game.KindPortal:
		spec, _ := c.catalog.Zone(strings.TrimPrefix(e.ID, "portal:"))
		return spec.Icon
	case game.KindTree:
		return "🌲"
	case game.KindBoulder:
		return "🪨"
	case game.KindTarget:
		return "⭕"
	case game.KindPlanet:
		return "🪐"
	case game.KindSlider:
		return "🎚"
	case game.KindButton:
		return "🤿"
	case game.KindKelp:
		return "🌿"
	case game.KindTreasure:
		return "💰"
	case game.KindCrystal:
		if e.Active {
			return "💎"
		}
		return "🔹"
	}
	// Rings and the star field have no top-down glyph.
	return ""
}

func entityLabel(e game.EntitySnapshot) string {
	switch e.Kind {
	case game.KindTree:
		return e.Label
	case game.KindSlider:
		return fmt.Sprintf("%s %.2f", e.Label, e.Value)
	case game.KindCrystal:
		if n, ok := entityID(e.ID, "crystal:"); ok {
			return fmt.Sprint(n + 1)
		}
	}
	return ""
}

// statusLine summarizes the current zone's puzzle.
func (c *Composer) statusLine(snap *game.GameSnapshot) string {
	st := snap.State
	zp, ok := st.Zone(st.CurrentZone)
	if !ok {
		return ""
	}

	switch {
	case zp.Hub != nil:
		open := 0
		for _, p := range zp.Hub.Portals {
			if p.Unlocked {
				open++
			}
		}
		return fmt.Sprintf("Portals open: %d/%d", open, len(zp.Hub.Portals))

	case zp.Forest != nil:
		nums := make([]string, len(zp.Forest.RevealedNumbers))
		for i, n := range zp.Forest.RevealedNumbers {
			nums[i] = fmt.Sprint(n)
		}
		return fmt.Sprintf("Revealed: [%s] %d/%d", strings.Join(nums, " "), len(nums), len(zp.Forest.Trees))

	case zp.Mountains != nil:
		parts := make([]string, 0, len(zp.Mountains.Boulders))
		for i, b := range zp.Mountains.Boulders {
			mark := "·"
			if b.Placed {
				mark = "✓"
			}
			sel := " "
			if i == c.controls.SelectedBoulder()%len(zp.Mountains.Boulders) {
				sel = ">"
			}
			parts = append(parts, fmt.Sprintf("%s%d%s (%.1f,%.1f)", sel, b.ID, mark, b.Position.X, b.Position.Z))
		}
		return "Boulders: " + strings.Join(parts, "  ")

	case zp.Galaxy != nil:
		col := zp.Galaxy.Colors
		line := fmt.Sprintf("R %.2f  G %.2f  B %.2f  [%s]", col.R, col.G, col.B, c.controls.SelectedChannel())
		if zp.Galaxy.Revealed {
			line += "  constellation revealed"
		}
		return line

	case zp.Ocean != nil:
		line := fmt.Sprintf("Depth: %d/%d", zp.Ocean.Depth, zp.Ocean.MaxDepth)
		if zp.Ocean.TreasureFound {
			line += "  treasure found"
		}
		return line

	case zp.Crystal != nil:
		return fmt.Sprintf("Resonance: %d%%  (%d/%d active)", zp.Crystal.ResonancePercent, len(zp.Crystal.Activated), game.CrystalSlots)
	}
	return ""
}

func (c *Composer) drawMessage(snap *game.GameSnapshot, y, w int) {
	switch {
	case c.Message() != "":
		style := styleBase
		if c.failed {
			style = styleError
		}
		drawText(c.screen, 1, y, w, c.Message(), style)
	case snap.Banner != "":
		drawText(c.screen, 1, y, w, snap.Banner, styleSuccess)
	}
}

func (c *Composer) drawFooter(y, w int) {
	if c.prompting {
		x := drawText(c.screen, 0, y, w, ":"+string(c.prompt), styleBase)
		c.screen.SetContent(x, y, '_', nil, styleBase)
		return
	}
	drawText(c.screen, 1, y, w, c.hints(), styleDim)
}

func (c *Composer) hints() string {
	const common = "h home  [ ] prev/next  : command  ? help  q quit"
	snap := c.source.GetSnapshot()
	switch currentZone(snap) {
	case game.ZoneForest:
		return "1-5 reveal  " + common
	case game.ZoneMountains:
		return "tab boulder  arrows move  " + common
	case game.ZoneGalaxy:
		return "r/g/b channel  arrows adjust  " + common
	case game.ZoneOcean:
		return "space dive  " + common
	case game.ZoneCrystal:
		return "1-5 activate  " + common
	}
	return common
}

func (c *Composer) drawHelp(zone game.ZoneID, area rect) {
	spec, _ := c.catalog.Zone(string(zone))
	box := rect{x: area.x + 4, y: area.y + 1, w: max(area.w-8, 10), h: max(area.h-2, 4)}
	drawBox(c.screen, box, styleBase)

	inner := box.w - 4
	drawText(c.screen, centered(spec.Instructions.Title, box), box.y+1, box.x+box.w-1, spec.Instructions.Title, styleTitle)
	for i, line := range wrap(spec.Instructions.Content, inner) {
		y := box.y + 3 + i
		if y >= box.y+box.h-1 {
			break
		}
		drawText(c.screen, box.x+2, y, box.x+box.w-2, line, styleBase)
	}
}

func (c *Composer) drawVictory(area rect) {
	v := c.catalog.Victory
	icons := make([]string, 0, len(game.PuzzleZones))
	for _, z := range game.PuzzleZones {
		spec, _ := c.catalog.Zone(string(z))
		icons = append(icons, spec.Icon)
	}

	inner := max(area.w-16, 10)
	body := wrap(v.Message, inner)
	box := rect{w: inner + 4, h: len(body) + 8}
	box.x = area.x + (area.w-box.w)/2
	box.y = area.y + max((area.h-box.h)/2, 0)
	drawBox(c.screen, box, styleSuccess)

	maxX := box.x + box.w - 1
	y := box.y + 1
	drawText(c.screen, centered("🏆 "+v.Heading, box), y, maxX, "🏆 "+v.Heading, styleSuccess)
	y += 2
	for _, line := range body {
		drawText(c.screen, centered(line, box), y, maxX, line, styleBase)
		y++
	}
	y++
	row := strings.Join(icons, " ")
	drawText(c.screen, box.x+(box.w-runewidth.StringWidth(row))/2, y, maxX, row, styleBase)
	y += 2
	drawText(c.screen, centered(v.Footer, box), y, maxX, v.Footer, styleDim)
}

func entityID(id, prefix string) (int, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	var n int
	if _, err := fmt.Sscanf(id[len(prefix):], "%d", &n); err != nil {
		return 0, false
	}
	return n, true
}
