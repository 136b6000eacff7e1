package game

import (
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"lost-algorithm/internal/config"
)

// worldHalfExtent bounds the pickable area of every scene.
const worldHalfExtent = 12

// EngineConfig configures a new Engine.
type EngineConfig struct {
	TickRate      int
	ParticleCount int
	Seed          int64 // 0 seeds from the clock
	CueTicks      int
	Limits        config.ResourceLimits
	EventLog      config.EventLogConfig
	Catalog       *config.ZoneCatalog
}

// DefaultEngineConfig uses the config defaults and the embedded zone catalog.
func DefaultEngineConfig() EngineConfig {
	return EngineConfigFrom(config.Default(), config.MustDefaultZoneCatalog())
}

// EngineConfigFrom extracts the engine settings from the application config.
func EngineConfigFrom(app config.AppConfig, catalog *config.ZoneCatalog) EngineConfig {
	return EngineConfig{
		TickRate:      app.Engine.TickRate,
		ParticleCount: app.Engine.ParticleCount,
		Seed:          app.Engine.Seed,
		CueTicks:      app.Engine.CueTicks,
		Limits:        app.Limits,
		EventLog:      app.EventLog,
		Catalog:       catalog,
	}
}

// ZoneInfo is a zone's catalog entry merged with its live navigation state.
type ZoneInfo struct {
	ID           ZoneID              `json:"id"`
	Index        int                 `json:"index"`
	Name         string              `json:"name"`
	Icon         string              `json:"icon"`
	Color        string              `json:"color"`
	PortalName   string              `json:"portalName,omitempty"`
	Instructions config.Instructions `json:"instructions"`
	Current      bool                `json:"current"`
	Unlocked     bool                `json:"unlocked"`
	Reachable    bool                `json:"reachable"`
	Completed    bool                `json:"completed"`
}

// Engine owns the session: progression, the six puzzles, their scenes and
// the frame loop that animates them and publishes snapshots.
type Engine struct {
	mu sync.RWMutex

	progression *Progression
	catalog     *config.ZoneCatalog

	// Puzzles, typed and by zone
	puzzles   map[ZoneID]Puzzle
	hub       *HubPuzzle
	forest    *ForestPuzzle
	mountains *MountainsPuzzle
	galaxy    *GalaxyPuzzle
	ocean     *OceanPuzzle
	crystal   *CrystalPuzzle

	scenes map[ZoneID]*Scene
	driver *AnimationDriver
	picker *Picker

	// Pointer state of the active scene
	grabbed int // boulder id picked up by a coordinate pointer, 0 = none
	hovered string

	cue      SoundCue
	cueTicks int

	// Client whose input is being applied, for event attribution
	inputSource      string
	victoryAnnounced bool

	tickRate int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	tickCount int64
	elapsed   float64 // seconds of animation time

	// Event callbacks
	onFragment   func(zone ZoneID, fragments int)
	onZoneChange func(from, to ZoneID)
	onVictory    func()
	tickObserver func(time.Duration)

	limits config.ResourceLimits

	// Snapshot system for lock-free render separation
	snapshotPool *SnapshotPool

	// Event sourcing for replay and debugging
	eventLog     *EventLog
	eventLogPath string

	// Deterministic RNG for replay consistency
	rng     *rand.Rand
	rngSeed int64
}

// fragmentSink routes puzzle completions back into the engine.
type fragmentSink struct{ e *Engine }

func (s fragmentSink) CollectFragment(zone ZoneID) bool {
	return s.e.collectFragmentLocked(zone)
}

// navigator lets the hub request zone changes.
type navigator struct{ e *Engine }

func (n navigator) ChangeZone(target ZoneID) bool {
	return n.e.changeZoneLocked(target)
}

func (n navigator) Victory() bool {
	return n.e.progression.Victory()
}

// NewEngine creates an engine positioned at home with the home scene mounted.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.CueTicks <= 0 {
		cfg.CueTicks = cfg.TickRate
	}
	if cfg.Limits.MaxEntities <= 0 {
		cfg.Limits = DefaultLimits
	}
	if cfg.Catalog == nil {
		cfg.Catalog = config.MustDefaultZoneCatalog()
	}
	if cfg.ParticleCount < 0 {
		cfg.ParticleCount = 0
	}
	if cfg.ParticleCount > cfg.Limits.MaxParticlesPerField {
		cfg.ParticleCount = cfg.Limits.MaxParticlesPerField
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		progression:  NewProgression(),
		catalog:      cfg.Catalog,
		driver:       NewAnimationDriver(cfg.Limits.MaxAnimationEntries),
		picker:       NewPicker(worldHalfExtent, cfg.Limits.MaxEntities),
		cueTicks:     cfg.CueTicks,
		tickRate:     cfg.TickRate,
		stopChan:     make(chan struct{}),
		limits:       cfg.Limits,
		snapshotPool: NewSnapshotPool(cfg.Limits),
		eventLog:     NewEventLog(cfg.EventLog.RatePerSec, cfg.EventLog.PerSourceRate),
		eventLogPath: cfg.EventLog.Path,
		rng:          rand.New(rand.NewSource(seed)),
		rngSeed:      seed,
	}
	e.buildPuzzles()

	builder := sceneBuilder{catalog: cfg.Catalog, rng: e.rng, particleCount: cfg.ParticleCount}
	e.scenes = builder.buildScenes()
	e.mountScene(ZoneHome)
	e.produceSnapshot()
	return e
}

func (e *Engine) buildPuzzles() {
	cat := e.catalog
	sink := fragmentSink{e}

	trees := make([]Tree, len(cat.Forest.Trees))
	for i, t := range cat.Forest.Trees {
		trees[i] = Tree{Position: at(t.Position), Number: t.Number}
	}
	boulders := make([]Boulder, len(cat.Mountains.Boulders))
	for i, b := range cat.Mountains.Boulders {
		boulders[i] = Boulder{ID: b.ID, Position: at(b.Position), Target: at(b.Target)}
	}
	slots := make([]Vec3, len(cat.Crystal.Slots))
	for i, s := range cat.Crystal.Slots {
		slots[i] = at(s)
	}
	portals := make([]Portal, 0, len(PuzzleZones))
	for _, z := range PuzzleZones {
		spec, _ := cat.Zone(string(z))
		portals = append(portals, Portal{
			Zone:     z,
			Name:     spec.Portal.Name,
			Color:    spec.Color,
			Position: at(spec.Portal.Position),
		})
	}
	initial := cat.Galaxy.Initial

	e.hub = NewHubPuzzle(portals, navigator{e}, e.progression.CanEnter)
	e.forest = NewForestPuzzle(trees, sink)
	e.mountains = NewMountainsPuzzle(boulders, sink)
	e.galaxy = NewGalaxyPuzzle(ColorChannels{R: initial.R, G: initial.G, B: initial.B}, sink)
	e.ocean = NewOceanPuzzle(at(cat.Ocean.Treasure), sink)
	e.crystal = NewCrystalPuzzle(slots, sink)

	e.puzzles = map[ZoneID]Puzzle{
		ZoneHome:      e.hub,
		ZoneForest:    e.forest,
		ZoneMountains: e.mountains,
		ZoneGalaxy:    e.galaxy,
		ZoneOcean:     e.ocean,
		ZoneCrystal:   e.crystal,
	}
}

// Start begins the frame loop
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopChan = make(chan struct{})
	e.ticker = time.NewTicker(time.Second / time.Duration(e.tickRate))
	ticker, stop := e.ticker, e.stopChan
	e.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				e.tick()
			case <-stop:
				return
			}
		}
	}()

	log.Printf("🎮 Game engine started at %d FPS", e.tickRate)
}

// Stop stops the frame loop. The engine can be started again.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("🛑 Game engine stopped")
}

// IsRunning reports whether the frame loop is active.
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// tick advances animation time by one frame
func (e *Engine) tick() {
	start := time.Now()
	e.mu.Lock()

	e.tickCount++
	e.elapsed += 1.0 / float64(e.tickRate)
	zone := e.progression.CurrentZone()

	// Heartbeat with RNG seed for deterministic replay, once per second
	if e.tickCount%int64(e.tickRate) == 0 {
		e.eventLog.EmitSimple(EventTypeTick, uint64(e.tickCount), "",
			TickPayload{
				RNGSeed:   e.rngSeed,
				Zone:      zone,
				Elapsed:   e.elapsed,
				Animating: e.driver.Len(),
			})
	}

	// Advance RNG seed deterministically for next tick
	e.rngSeed = e.rng.Int63()
	e.rng.Seed(e.rngSeed)

	e.driver.Tick(e.elapsed)
	// Only the mounted scene's particles move
	e.scenes[zone].Field.Tick()
	e.cue.Update()

	e.produceSnapshot()
	observer := e.tickObserver
	e.mu.Unlock()

	if observer != nil {
		observer(time.Since(start))
	}
}

// mountScene swaps the active scene's animations and resets pointer state.
func (e *Engine) mountScene(zone ZoneID) {
	e.driver.Reset()
	e.grabbed = 0
	e.hovered = ""
	scene := e.scenes[zone]
	scene.Mount(e.driver)
	e.syncScene(zone)
}

// syncScene copies puzzle-owned geometry back onto scene entities.
func (e *Engine) syncScene(zone ZoneID) {
	if zone != ZoneMountains {
		return
	}
	scene := e.scenes[zone]
	for _, b := range e.mountains.boulders {
		if ent, ok := scene.Entity(fmt.Sprintf("boulder:%d", b.ID)); ok {
			ent.Transform.Position = b.Position
		}
	}
}

// changeZoneLocked applies a zone change. Caller holds e.mu.
func (e *Engine) changeZoneLocked(target ZoneID) bool {
	from := e.progression.CurrentZone()
	if !e.progression.ChangeZone(target) {
		e.eventLog.EmitSimple(EventTypeZoneRejected, uint64(e.tickCount), e.inputSource,
			ZoneChangePayload{From: from, To: target})
		return false
	}

	if from != target {
		e.mountScene(target)
	}
	e.eventLog.EmitSimple(EventTypeZoneChange, uint64(e.tickCount), e.inputSource,
		ZoneChangePayload{From: from, To: target})
	log.Printf("🧭 Zone %s -> %s", from, target)

	if cb := e.onZoneChange; cb != nil {
		go cb(from, target)
	}
	return true
}

// collectFragmentLocked records a solved zone. Caller holds e.mu.
func (e *Engine) collectFragmentLocked(zone ZoneID) bool {
	if !e.progression.CollectFragment(zone) {
		return false
	}
	fragments := e.progression.Fragments()

	e.cue.Trigger(CueCollect, e.cueTicks)
	if scene, ok := e.scenes[zone]; ok {
		scene.Field.SetActive(true)
	}
	e.eventLog.EmitSimple(EventTypeFragment, uint64(e.tickCount), e.inputSource,
		FragmentPayload{Zone: zone, Fragments: fragments, Total: TotalFragments})
	log.Printf("💎 Fragment collected in %s (%d/%d)", zone, fragments, TotalFragments)

	if cb := e.onFragment; cb != nil {
		go cb(zone, fragments)
	}

	if e.progression.Victory() && !e.victoryAnnounced {
		e.victoryAnnounced = true
		e.cue.Trigger(CueComplete, e.cueTicks)
		e.scenes[ZoneHome].Field.SetActive(true)
		e.eventLog.EmitSimple(EventTypeVictory, uint64(e.tickCount), e.inputSource,
			VictoryPayload{Ticks: uint64(e.tickCount), Elapsed: e.elapsed})
		log.Printf("🏆 All %d fragments recovered", TotalFragments)
		if cb := e.onVictory; cb != nil {
			go cb()
		}
	}
	return true
}

// SelectZone requests a zone change on behalf of source.
// Rejected requests leave the state untouched and return false.
func (e *Engine) SelectZone(source string, target ZoneID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.inputSource = source
	defer func() { e.inputSource = "" }()

	ok := e.changeZoneLocked(target)
	e.produceSnapshot()
	return ok
}

// Interact routes in to the current zone's puzzle. Interactions addressed
// to another zone are ignored. Returns whether anything changed.
func (e *Engine) Interact(source string, in Interaction) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	applied := e.interactLocked(source, in)
	e.produceSnapshot()
	return applied
}

func (e *Engine) interactLocked(source string, in Interaction) bool {
	zone := e.progression.CurrentZone()
	if in.Zone != "" && in.Zone != zone {
		return false
	}

	e.inputSource = source
	defer func() { e.inputSource = "" }()

	if in.Kind == InteractHover {
		e.hovered = in.Entity
		if in.Entity != "" {
			e.cue.Trigger(CueHover, e.cueTicks)
		}
		return true
	}

	applied := e.puzzles[zone].RegisterInteraction(in)
	e.eventLog.EmitSimple(EventTypeInteraction, uint64(e.tickCount), source,
		InteractionPayload{Zone: zone, Kind: in.Kind, Entity: in.Entity, Applied: applied})

	// A hub selection may have mounted another scene already.
	if cur := e.progression.CurrentZone(); cur == zone {
		e.syncScene(zone)
	}
	return applied
}

// Pointer resolves a click in the current scene. entityID names the target
// directly; otherwise point is hit-tested against the scene. Both may be set,
// in which case point is where on the entity the click landed.
//
// In the mountains a coordinate click on a boulder picks it up and the next
// click elsewhere drops it there.
func (e *Engine) Pointer(source, entityID string, point *Vec3) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	applied := e.pointerLocked(source, entityID, point)
	e.produceSnapshot()
	return applied
}

func (e *Engine) pointerLocked(source, entityID string, point *Vec3) bool {
	if point != nil && !point.Finite() {
		return false
	}
	zone := e.progression.CurrentZone()
	scene := e.scenes[zone]

	var ent *Entity
	var ok bool
	switch {
	case entityID != "":
		ent, ok = scene.Entity(entityID)
		if !ok {
			return false
		}
	case point != nil:
		ent, ok = e.picker.Pick(scene.Entities, *point)
		if ent != nil && ent.Kind == KindBoulder {
			id, _ := entityIndex(ent.ID, "boulder:")
			e.grabbed = id
			return true
		}
		if !ok {
			if zone == ZoneMountains && e.grabbed != 0 {
				id := e.grabbed
				e.grabbed = 0
				return e.interactLocked(source, Interaction{
					Kind:      InteractMove,
					BoulderID: id,
					Point:     *point,
					Entity:    fmt.Sprintf("boulder:%d", id),
				})
			}
			return false
		}
	default:
		return false
	}

	in, ok := e.interactionFor(ent, point)
	if !ok {
		return false
	}
	return e.interactLocked(source, in)
}

// interactionFor translates a click on ent into a puzzle interaction.
func (e *Engine) interactionFor(ent *Entity, point *Vec3) (Interaction, bool) {
	in := Interaction{Entity: ent.ID}
	switch ent.Kind {
	case KindPortal:
		in.Kind = InteractSelect
		in.Target = ZoneID(strings.TrimPrefix(ent.ID, "portal:"))
	case KindTree:
		idx, ok := entityIndex(ent.ID, "tree:")
		if !ok || idx >= len(e.forest.trees) {
			return in, false
		}
		in.Kind = InteractReveal
		in.Number = e.forest.trees[idx].Number
	case KindBoulder:
		// A named boulder without a point has nowhere to go.
		if point == nil {
			return in, false
		}
		id, ok := entityIndex(ent.ID, "boulder:")
		if !ok {
			return in, false
		}
		in.Kind = InteractMove
		in.BoulderID = id
		in.Point = *point
	case KindSlider:
		if point == nil {
			return in, false
		}
		ch, ok := ParseChannel(strings.TrimPrefix(ent.ID, "slider:"))
		if !ok {
			return in, false
		}
		in.Kind = InteractColor
		in.Channel = ch
		in.Value = SliderValueAt(ent.Transform.Position.X, point.X)
	case KindButton:
		in.Kind = InteractDive
	case KindCrystal:
		idx, ok := entityIndex(ent.ID, "crystal:")
		if !ok {
			return in, false
		}
		in.Kind = InteractActivate
		in.Slot = idx
	default:
		return in, false
	}
	return in, true
}

// entityIndex parses the numeric suffix of ids like "tree:3".
func entityIndex(id, prefix string) (int, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// GetState returns the current progression and per-zone progress
func (e *Engine) GetState() GameState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() GameState {
	p := e.progression
	zones := make([]ZoneProgress, 0, len(ZoneOrder))
	nav := make([]ZoneID, 0, len(ZoneOrder))
	for _, z := range ZoneOrder {
		zp := e.puzzles[z].Progress()
		zp.Completed = p.Completed(z)
		zones = append(zones, zp)
		if p.NavEnabled(z) {
			nav = append(nav, z)
		}
	}
	return GameState{
		CurrentZone:    p.CurrentZone(),
		Fragments:      p.Fragments(),
		TotalFragments: TotalFragments,
		Progress:       p.Progress(),
		UnlockedZones:  p.Unlocked(),
		NavEnabled:     nav,
		Victory:        p.Victory(),
		Zones:          zones,
	}
}

// Zones lists every zone in order with its live navigation state.
func (e *Engine) Zones() []ZoneInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	p := e.progression
	out := make([]ZoneInfo, 0, len(ZoneOrder))
	for _, z := range ZoneOrder {
		spec, _ := e.catalog.Zone(string(z))
		out = append(out, ZoneInfo{
			ID:           z,
			Index:        z.Index(),
			Name:         spec.Name,
			Icon:         spec.Icon,
			Color:        spec.Color,
			PortalName:   spec.Portal.Name,
			Instructions: spec.Instructions,
			Current:      p.CurrentZone() == z,
			Unlocked:     p.IsUnlocked(z),
			Reachable:    p.CanEnter(z),
			Completed:    p.Completed(z),
		})
	}
	return out
}

// Catalog returns the zone catalog the engine was built from.
func (e *Engine) Catalog() *config.ZoneCatalog {
	return e.catalog
}

// TickCount returns the number of frames simulated.
func (e *Engine) TickCount() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tickCount
}

// SetCallbacks sets event callbacks. Each runs on its own goroutine.
func (e *Engine) SetCallbacks(onFragment func(ZoneID, int), onZoneChange func(from, to ZoneID), onVictory func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onFragment = onFragment
	e.onZoneChange = onZoneChange
	e.onVictory = onVictory
}

// SetTickObserver registers a function called with each frame's duration.
func (e *Engine) SetTickObserver(fn func(time.Duration)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickObserver = fn
}

// GetSnapshot returns the latest immutable snapshot for lock-free rendering
func (e *Engine) GetSnapshot() *GameSnapshot {
	return e.snapshotPool.AcquireRead()
}

// produceSnapshot publishes the current frame. Caller holds e.mu.
func (e *Engine) produceSnapshot() {
	snap := e.snapshotPool.AcquireWrite()
	snap.TickNumber = uint64(e.tickCount)
	snap.Elapsed = e.elapsed
	snap.RNGSeed = e.rngSeed
	snap.State = e.stateLocked()

	zone := e.progression.CurrentZone()
	scene := e.scenes[zone]
	for _, ent := range scene.Entities {
		if len(snap.Entities) >= e.limits.MaxEntities {
			break
		}
		snap.Entities = append(snap.Entities, e.entitySnapshot(ent))
	}
	snap.Particles = scene.Field.AppendRender(snap.Particles, e.limits.MaxParticlesPerField)

	if zone == ZoneGalaxy {
		snap.Stars = scene.Stars
		snap.StarColor = e.galaxy.Colors().Hex()
	}
	if e.progression.Completed(zone) {
		spec, _ := e.catalog.Zone(string(zone))
		snap.Banner = spec.Success.Message
	}
	snap.Grabbed = e.grabbed
	snap.Hovered = e.hovered
	snap.Cue = e.cue

	e.snapshotPool.PublishWrite()
}

// entitySnapshot decorates ent with the puzzle state it displays.
func (e *Engine) entitySnapshot(ent *Entity) EntitySnapshot {
	es := EntitySnapshot{
		ID:       ent.ID,
		Kind:     ent.Kind,
		Position: ent.Transform.Position,
		Rotation: ent.Transform.Rotation,
		Color:    ent.Color,
	}
	hovered := e.hovered == ent.ID

	switch ent.Kind {
	case KindPortal:
		z := ZoneID(strings.TrimPrefix(ent.ID, "portal:"))
		spec, _ := e.catalog.Zone(string(z))
		es.Label = spec.Portal.Name
		es.Active = e.progression.CanEnter(z)
		if hovered {
			es.Emissive = 0.3
		}

	case KindTree:
		idx, ok := entityIndex(ent.ID, "tree:")
		if !ok || idx >= len(e.forest.trees) {
			break
		}
		n := e.forest.trees[idx].Number
		es.Active = e.forest.seen.Has(n)
		if es.Active || hovered {
			es.Label = strconv.Itoa(n)
		}
		if hovered {
			es.Color = "#22C55E"
			es.Emissive = 0.2
		}

	case KindBoulder:
		id, _ := entityIndex(ent.ID, "boulder:")
		b, ok := e.mountains.Boulder(id)
		if !ok {
			break
		}
		es.Position = b.Position
		es.Active = b.Placed
		switch {
		case b.Placed:
			es.Color = "#22C55E"
			es.Emissive = 0.3
		case e.grabbed == id || hovered:
			es.Color = "#94A3B8"
		}

	case KindPlanet:
		c := e.galaxy.Colors().Get(Channel(strings.TrimPrefix(ent.ID, "planet:")))
		es.Color = ColorChannels{R: c, G: c * 0.8, B: c * 0.6}.Hex()
		es.Active = e.galaxy.Revealed()

	case KindRing:
		c := e.galaxy.Colors().Get(Channel(strings.TrimPrefix(ent.ID, "ring:")))
		es.Color = ColorChannels{R: c * 0.8, G: c, B: c * 0.7}.Hex()

	case KindStars:
		es.Color = e.galaxy.Colors().Hex()

	case KindSlider:
		ch := Channel(strings.TrimPrefix(ent.ID, "slider:"))
		es.Value = e.galaxy.Colors().Get(ch)
		es.Label = strings.ToUpper(string(ch))

	case KindButton:
		es.Label = fmt.Sprintf("DIVE (Depth: %d)", e.ocean.Depth())
		es.Active = e.ocean.Depth() < MaxDepth

	case KindKelp:
		es.Hidden = !e.ocean.KelpVisible()

	case KindTreasure:
		es.Hidden = !e.ocean.TreasureFound()
		es.Emissive = 0.3

	case KindCrystal:
		idx, _ := entityIndex(ent.ID, "crystal:")
		es.Active = e.crystal.IsActivated(idx)
		es.Emissive = e.crystal.EmissiveIntensity(idx)
		switch {
		case es.Active:
			es.Color = "#EC4899"
		case hovered:
			es.Color = "#F472B6"
		}
	}
	return es
}

// StartEventLog starts the event log, writing to the configured path
func (e *Engine) StartEventLog() error {
	return e.eventLog.Start(e.eventLogPath)
}

// StopEventLog gracefully stops the event logging system
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// GetEventLogStats returns event log statistics for monitoring
func (e *Engine) GetEventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}

// RecentEvents returns up to n of the newest logged events
func (e *Engine) RecentEvents(n int) []Event {
	return e.eventLog.RecentEvents(n)
}

// GetLimits returns the current resource limits
func (e *Engine) GetLimits() config.ResourceLimits {
	return e.limits
}
