package arch

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Spec is the on-disk description of an architecture.
//
//	name: compact
//	storage_zones:
//	  - name: storage
//	    rows: 4
//	    cols: 8
//	    origin: {x: 0, y: 0}
//	    separation: {x: 3, y: 3}
//	entanglement_zones:
//	  - name: entanglement
//	    rows: 2
//	    cols: 4
//	    origin: {x: 0, y: 30}
//	    separation: {x: 12, y: 10}
//	    pair_offset: {x: 2, y: 0}
type Spec struct {
	Name              string     `yaml:"name"`
	StorageZones      []ZoneSpec `yaml:"storage_zones"`
	EntanglementZones []ZoneSpec `yaml:"entanglement_zones"`
}

// ZoneSpec describes one zone. PairOffset is only meaningful for
// entanglement zones: it is the offset of the second sub-array.
type ZoneSpec struct {
	Name       string `yaml:"name"`
	Rows       int    `yaml:"rows"`
	Cols       int    `yaml:"cols"`
	Origin     Point  `yaml:"origin"`
	Separation Point  `yaml:"separation"`
	PairOffset Point  `yaml:"pair_offset,omitempty"`
}

// Load reads a YAML architecture description.
func Load(r io.Reader) (*Architecture, error) {
	var spec Spec
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Wrap(ErrInvalidArchitecture, "empty architecture description")
		}
		return nil, errors.Wrap(err, "decode architecture")
	}
	return New(spec)
}

// LoadFile reads a YAML architecture description from path.
func LoadFile(path string) (*Architecture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open architecture")
	}
	defer f.Close()

	a, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load architecture %s", path)
	}
	return a, nil
}
