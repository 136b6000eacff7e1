package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed zones.yaml
var defaultZoneCatalog []byte

// Point is an [x, y, z] triple in world units.
type Point [3]float64

// Motion holds the parameters of a decorative animation.
type Motion struct {
	Speed     float64 `yaml:"speed"`
	Amplitude float64 `yaml:"amplitude"`
}

// ZoneCatalog is the full zone layout: display metadata plus the
// placement of every interactive entity.
type ZoneCatalog struct {
	Title     string          `yaml:"title"`
	Victory   VictoryText     `yaml:"victory"`
	Zones     []ZoneSpec      `yaml:"zones"`
	Hub       HubLayout       `yaml:"hub"`
	Forest    ForestLayout    `yaml:"forest"`
	Mountains MountainsLayout `yaml:"mountains"`
	Galaxy    GalaxyLayout    `yaml:"galaxy"`
	Ocean     OceanLayout     `yaml:"ocean"`
	Crystal   CrystalLayout   `yaml:"crystal"`
}

// VictoryText is shown once every fragment is collected.
type VictoryText struct {
	Heading string `yaml:"heading"`
	Message string `yaml:"message"`
	Footer  string `yaml:"footer"`
}

// ZoneSpec describes one zone for navigation and help.
type ZoneSpec struct {
	ID           string       `yaml:"id"`
	Name         string       `yaml:"name"`
	Icon         string       `yaml:"icon"`
	Color        string       `yaml:"color"`
	Portal       PortalSpec   `yaml:"portal"`
	Success      SuccessSpec  `yaml:"success"`
	Instructions Instructions `yaml:"instructions"`
}

// PortalSpec places a zone's portal on the hub globe.
type PortalSpec struct {
	Name     string `yaml:"name"`
	Position Point  `yaml:"position"`
}

// SuccessSpec is the message shown (and particle anchor used) once a zone is solved.
type SuccessSpec struct {
	Message string `yaml:"message"`
	Anchor  Point  `yaml:"anchor"`
}

// Instructions is the help panel text for a zone.
type Instructions struct {
	Title   string `yaml:"title" json:"title"`
	Content string `yaml:"content" json:"content"`
}

type HubLayout struct {
	GlobeRadius  float64 `yaml:"globe_radius"`
	Spin         float64 `yaml:"spin"`
	PortalRadius float64 `yaml:"portal_radius"`
}

type ForestLayout struct {
	Float      Motion     `yaml:"float"`
	LeafRadius float64    `yaml:"leaf_radius"`
	LeafHeight float64    `yaml:"leaf_height"`
	Trees      []TreeSpec `yaml:"trees"`
}

type TreeSpec struct {
	Position Point `yaml:"position"`
	Number   int   `yaml:"number"`
}

type MountainsLayout struct {
	BoulderRadius float64       `yaml:"boulder_radius"`
	Boulders      []BoulderSpec `yaml:"boulders"`
}

type BoulderSpec struct {
	ID       int   `yaml:"id"`
	Position Point `yaml:"position"`
	Target   Point `yaml:"target"`
}

type GalaxyLayout struct {
	Initial    ColorSpec    `yaml:"initial"`
	PlanetSpin float64      `yaml:"planet_spin"`
	RingSpin   float64      `yaml:"ring_spin"`
	StarCount  int          `yaml:"star_count"`
	StarSpread float64      `yaml:"star_spread"`
	StarSpin   float64      `yaml:"star_spin"`
	Panel      Point        `yaml:"panel"`
	Planets    []PlanetSpec `yaml:"planets"`
	Sliders    []SliderSpec `yaml:"sliders"`
}

type ColorSpec struct {
	R float64 `yaml:"r"`
	G float64 `yaml:"g"`
	B float64 `yaml:"b"`
}

type PlanetSpec struct {
	Channel  string `yaml:"channel"`
	Position Point  `yaml:"position"`
}

type SliderSpec struct {
	Channel string  `yaml:"channel"`
	OffsetX float64 `yaml:"offset_x"`
}

type OceanLayout struct {
	DiveButton Point   `yaml:"dive_button"`
	Treasure   Point   `yaml:"treasure"`
	Kelp       []Point `yaml:"kelp"`
}

type CrystalLayout struct {
	Float Motion  `yaml:"float"`
	Slots []Point `yaml:"slots"`
}

// Zone looks up a zone by id.
func (c *ZoneCatalog) Zone(id string) (ZoneSpec, bool) {
	for _, z := range c.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return ZoneSpec{}, false
}

// DefaultZoneCatalog parses the catalog compiled into the binary.
func DefaultZoneCatalog() (*ZoneCatalog, error) {
	return ParseZoneCatalog(defaultZoneCatalog, "embedded zones.yaml")
}

// MustDefaultZoneCatalog is DefaultZoneCatalog for tests and static setup.
func MustDefaultZoneCatalog() *ZoneCatalog {
	c, err := DefaultZoneCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadZoneCatalog reads a catalog from disk. An empty path yields the embedded default.
func LoadZoneCatalog(path string) (*ZoneCatalog, error) {
	if path == "" {
		return DefaultZoneCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read zone catalog %s: %w", path, err)
	}
	return ParseZoneCatalog(data, path)
}

// ParseZoneCatalog decodes, defaults and validates catalog YAML.
func ParseZoneCatalog(data []byte, source string) (*ZoneCatalog, error) {
	var catalog ZoneCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse zone catalog YAML from %s: %w", source, err)
	}

	applyCatalogDefaults(&catalog)

	if err := validateZoneCatalog(&catalog); err != nil {
		return nil, fmt.Errorf("invalid zone catalog in %s: %w", source, err)
	}
	return &catalog, nil
}

// applyCatalogDefaults fills optional sizes and speeds left out of the YAML.
func applyCatalogDefaults(c *ZoneCatalog) {
	if c.Title == "" {
		c.Title = "Lost Algorithm Recovery"
	}
	if c.Hub.GlobeRadius == 0 {
		c.Hub.GlobeRadius = 2
	}
	if c.Hub.PortalRadius == 0 {
		c.Hub.PortalRadius = 0.2
	}
	if c.Hub.Spin == 0 {
		c.Hub.Spin = 0.2
	}
	if c.Forest.LeafRadius == 0 {
		c.Forest.LeafRadius = 1
	}
	if c.Forest.LeafHeight == 0 {
		c.Forest.LeafHeight = 2.5
	}
	if c.Mountains.BoulderRadius == 0 {
		c.Mountains.BoulderRadius = 0.8
	}
	if c.Galaxy.StarCount == 0 {
		c.Galaxy.StarCount = 200
	}
	if c.Galaxy.StarSpread == 0 {
		c.Galaxy.StarSpread = 20
	}
}

var requiredZones = []string{"home", "forest", "mountains", "galaxy", "ocean", "crystal"}

// validateZoneCatalog enforces the fixed puzzle shapes.
func validateZoneCatalog(c *ZoneCatalog) error {
	seen := make(map[string]bool, len(c.Zones))
	for i, z := range c.Zones {
		if z.ID == "" {
			return fmt.Errorf("zone %d: id is required", i)
		}
		if seen[z.ID] {
			return fmt.Errorf("zone %q declared twice", z.ID)
		}
		seen[z.ID] = true
		if z.Name == "" {
			return fmt.Errorf("zone %q: name is required", z.ID)
		}
		if z.ID != "home" && z.Portal.Name == "" {
			return fmt.Errorf("zone %q: portal name is required", z.ID)
		}
	}
	for _, id := range requiredZones {
		if !seen[id] {
			return fmt.Errorf("zone %q is missing", id)
		}
	}

	if len(c.Forest.Trees) != 5 {
		return fmt.Errorf("forest: exactly 5 trees required, got %d", len(c.Forest.Trees))
	}
	numbers := make([]int, 0, len(c.Forest.Trees))
	for _, t := range c.Forest.Trees {
		numbers = append(numbers, t.Number)
	}
	sort.Ints(numbers)
	var sb strings.Builder
	for _, n := range numbers {
		sb.WriteString(strconv.Itoa(n))
	}
	if sb.String() != "13579" {
		return fmt.Errorf("forest: tree numbers must be 1, 3, 5, 7 and 9, got %v", numbers)
	}

	if len(c.Mountains.Boulders) != 3 {
		return fmt.Errorf("mountains: exactly 3 boulders required, got %d", len(c.Mountains.Boulders))
	}
	for i, b := range c.Mountains.Boulders {
		if b.ID != i+1 {
			return fmt.Errorf("mountains: boulder %d must have id %d, got %d", i, i+1, b.ID)
		}
	}

	if err := validateChannels("galaxy planets", len(c.Galaxy.Planets), func(i int) string {
		return c.Galaxy.Planets[i].Channel
	}); err != nil {
		return err
	}
	if err := validateChannels("galaxy sliders", len(c.Galaxy.Sliders), func(i int) string {
		return c.Galaxy.Sliders[i].Channel
	}); err != nil {
		return err
	}
	for _, v := range []float64{c.Galaxy.Initial.R, c.Galaxy.Initial.G, c.Galaxy.Initial.B} {
		if v < 0 || v > 1 {
			return fmt.Errorf("galaxy: initial channel %.3f outside [0,1]", v)
		}
	}

	if len(c.Crystal.Slots) != 5 {
		return fmt.Errorf("crystal: exactly 5 slots required, got %d", len(c.Crystal.Slots))
	}
	return nil
}

func validateChannels(what string, n int, channel func(int) string) error {
	if n != 3 {
		return fmt.Errorf("%s: exactly 3 required, got %d", what, n)
	}
	got := map[string]bool{}
	for i := 0; i < n; i++ {
		ch := channel(i)
		if ch != "r" && ch != "g" && ch != "b" {
			return fmt.Errorf("%s: unknown channel %q", what, ch)
		}
		got[ch] = true
	}
	if len(got) != 3 {
		return fmt.Errorf("%s: channels r, g and b must each appear once", what)
	}
	return nil
}
