// Package arch describes a zoned neutral-atom architecture: storage zones
// where idle atoms park, and entanglement zones made of two mirrored SLM
// sub-arrays where pairs of atoms interact.
//
// Sites are value handles (SLM index, row, column) into the architecture's
// SLM table, so they can be copied freely and used as map keys.
package arch

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidArchitecture is returned when an architecture description is
// inconsistent.
var ErrInvalidArchitecture = errors.New("invalid architecture")

// Kind distinguishes storage from entanglement SLM arrays.
type Kind int

const (
	Storage Kind = iota
	Entanglement
)

func (k Kind) String() string {
	switch k {
	case Storage:
		return "storage"
	case Entanglement:
		return "entanglement"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Point is a position in micrometres.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// SLM is one rectangular array of trap sites.
type SLM struct {
	Name       string
	Kind       Kind
	Rows, Cols int
	Origin     Point
	Separation Point
	Zone       int // index into EntanglementZones, -1 for storage arrays
}

// EntanglementZone pairs two SLM sub-arrays of identical shape. Slot (r, c)
// of the zone consists of site (r, c) in each sub-array.
type EntanglementZone struct {
	Name       string
	SLMs       [2]int
	Rows, Cols int
}

// Site identifies a single trap.
type Site struct {
	SLM int `yaml:"slm"`
	Row int `yaml:"row"`
	Col int `yaml:"col"`
}

// GateSite identifies one interaction slot of an entanglement zone.
type GateSite struct {
	Zone int
	Row  int
	Col  int
}

// Architecture is immutable once built by New.
type Architecture struct {
	Name              string
	SLMs              []SLM
	EntanglementZones []EntanglementZone

	storage []int
}

// New builds and validates an architecture from its description.
func New(spec Spec) (*Architecture, error) {
	a := &Architecture{Name: spec.Name}
	names := make(map[string]bool)

	checkZone := func(kind string, z ZoneSpec) error {
		if z.Name == "" {
			return errors.Wrapf(ErrInvalidArchitecture, "%s zone without a name", kind)
		}
		if names[z.Name] {
			return errors.Wrapf(ErrInvalidArchitecture, "duplicate zone name %q", z.Name)
		}
		names[z.Name] = true
		if z.Rows <= 0 || z.Cols <= 0 {
			return errors.Wrapf(ErrInvalidArchitecture, "zone %q: rows and cols must be positive, got %dx%d", z.Name, z.Rows, z.Cols)
		}
		if z.Separation.X <= 0 || z.Separation.Y <= 0 {
			return errors.Wrapf(ErrInvalidArchitecture, "zone %q: separation must be positive", z.Name)
		}
		return nil
	}

	for _, z := range spec.StorageZones {
		if err := checkZone("storage", z); err != nil {
			return nil, err
		}
		a.storage = append(a.storage, len(a.SLMs))
		a.SLMs = append(a.SLMs, SLM{
			Name:       z.Name,
			Kind:       Storage,
			Rows:       z.Rows,
			Cols:       z.Cols,
			Origin:     z.Origin,
			Separation: z.Separation,
			Zone:       -1,
		})
	}

	for _, z := range spec.EntanglementZones {
		if err := checkZone("entanglement", z); err != nil {
			return nil, err
		}
		if z.PairOffset == (Point{}) {
			return nil, errors.Wrapf(ErrInvalidArchitecture, "zone %q: pair_offset must be non-zero", z.Name)
		}
		zone := EntanglementZone{Name: z.Name, Rows: z.Rows, Cols: z.Cols}
		for i, origin := range []Point{z.Origin, {X: z.Origin.X + z.PairOffset.X, Y: z.Origin.Y + z.PairOffset.Y}} {
			zone.SLMs[i] = len(a.SLMs)
			a.SLMs = append(a.SLMs, SLM{
				Name:       fmt.Sprintf("%s/%d", z.Name, i),
				Kind:       Entanglement,
				Rows:       z.Rows,
				Cols:       z.Cols,
				Origin:     origin,
				Separation: z.Separation,
				Zone:       len(a.EntanglementZones),
			})
		}
		a.EntanglementZones = append(a.EntanglementZones, zone)
	}

	if err := a.checkOverlap(); err != nil {
		return nil, err
	}
	return a, nil
}

// checkOverlap rejects architectures in which two sites share a position.
func (a *Architecture) checkOverlap() error {
	type key struct{ x, y int64 }
	seen := make(map[key]Site)
	for i, slm := range a.SLMs {
		for r := 0; r < slm.Rows; r++ {
			for c := 0; c < slm.Cols; c++ {
				s := Site{SLM: i, Row: r, Col: c}
				p := a.Position(s)
				k := key{int64(math.Round(p.X * 1e6)), int64(math.Round(p.Y * 1e6))}
				if other, ok := seen[k]; ok {
					return errors.Wrapf(ErrInvalidArchitecture, "site %s of %q overlaps site %s of %q",
						s, slm.Name, other, a.SLMs[other.SLM].Name)
				}
				seen[k] = s
			}
		}
	}
	return nil
}

func (s Site) String() string {
	return fmt.Sprintf("%d:(%d,%d)", s.SLM, s.Row, s.Col)
}

// Contains reports whether s addresses an existing trap.
func (a *Architecture) Contains(s Site) bool {
	if s.SLM < 0 || s.SLM >= len(a.SLMs) {
		return false
	}
	slm := a.SLMs[s.SLM]
	return s.Row >= 0 && s.Row < slm.Rows && s.Col >= 0 && s.Col < slm.Cols
}

// Kind returns the kind of the SLM array holding s.
func (a *Architecture) Kind(s Site) Kind {
	return a.SLMs[s.SLM].Kind
}

// Position returns the location of s in micrometres.
func (a *Architecture) Position(s Site) Point {
	slm := a.SLMs[s.SLM]
	return Point{
		X: slm.Origin.X + float64(s.Col)*slm.Separation.X,
		Y: slm.Origin.Y + float64(s.Row)*slm.Separation.Y,
	}
}

// Distance returns the Euclidean distance between two sites.
func (a *Architecture) Distance(from, to Site) float64 {
	p, q := a.Position(from), a.Position(to)
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// StorageSites lists all storage sites in row-major order, SLM by SLM.
func (a *Architecture) StorageSites() []Site {
	var sites []Site
	for _, idx := range a.storage {
		slm := a.SLMs[idx]
		for r := 0; r < slm.Rows; r++ {
			for c := 0; c < slm.Cols; c++ {
				sites = append(sites, Site{SLM: idx, Row: r, Col: c})
			}
		}
	}
	return sites
}

// GateSites lists all interaction slots in row-major order, zone by zone.
func (a *Architecture) GateSites() []GateSite {
	var sites []GateSite
	for z, zone := range a.EntanglementZones {
		for r := 0; r < zone.Rows; r++ {
			for c := 0; c < zone.Cols; c++ {
				sites = append(sites, GateSite{Zone: z, Row: r, Col: c})
			}
		}
	}
	return sites
}

// EntanglementCapacity is the number of entanglement sites, rows×cols summed
// across all sub-arrays.
func (a *Architecture) EntanglementCapacity() int {
	n := 0
	for _, zone := range a.EntanglementZones {
		n += 2 * zone.Rows * zone.Cols
	}
	return n
}

// Sites returns the two sites that form the interaction slot gs.
func (a *Architecture) Sites(gs GateSite) (Site, Site) {
	zone := a.EntanglementZones[gs.Zone]
	return Site{SLM: zone.SLMs[0], Row: gs.Row, Col: gs.Col},
		Site{SLM: zone.SLMs[1], Row: gs.Row, Col: gs.Col}
}

// GateSiteOf returns the interaction slot containing s. ok is false for
// storage sites.
func (a *Architecture) GateSiteOf(s Site) (gs GateSite, ok bool) {
	slm := a.SLMs[s.SLM]
	if slm.Kind != Entanglement {
		return GateSite{}, false
	}
	return GateSite{Zone: slm.Zone, Row: s.Row, Col: s.Col}, true
}

// Mirror returns the partner site of s within its interaction slot.
func (a *Architecture) Mirror(s Site) (Site, bool) {
	gs, ok := a.GateSiteOf(s)
	if !ok {
		return Site{}, false
	}
	left, right := a.Sites(gs)
	if s == left {
		return right, true
	}
	return left, true
}
