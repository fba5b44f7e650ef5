package ground

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownLayer   = errors.New("ground: unknown layer")
	ErrTooManyLayers  = errors.New("ground: more than 32 layers")
	ErrDuplicateLayer = errors.New("ground: duplicate layer name")
)

// Layers is a bitmask of collision layers, one bit per named layer.
type Layers uint32

const AllLayers Layers = ^Layers(0)

func (l Layers) Has(other Layers) bool { return l&other != 0 }

// LayerTable assigns bits to layer names in declaration order.
type LayerTable struct {
	names []string
	bits  map[string]Layers
}

func NewLayerTable(names ...string) (*LayerTable, error) {
	if len(names) > 32 {
		return nil, ErrTooManyLayers
	}
	t := &LayerTable{bits: make(map[string]Layers, len(names))}
	for i, name := range names {
		if _, ok := t.bits[name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLayer, name)
		}
		t.bits[name] = Layers(1) << i
		t.names = append(t.names, name)
	}
	return t, nil
}

// Mask ORs together the bits of the named layers.
func (t *LayerTable) Mask(names ...string) (Layers, error) {
	var m Layers
	for _, name := range names {
		bit, ok := t.bits[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
		}
		m |= bit
	}
	return m, nil
}

func (t *LayerTable) Names() []string {
	return append([]string(nil), t.names...)
}
