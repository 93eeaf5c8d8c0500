package mapping

import (
	"reflect"

	"omap/internal/common"
)

// Pair is a source/target type pair.
type Pair struct {
	Source reflect.Type
	Target reflect.Type
}

func (p Pair) String() string {
	return common.PairKey(p.Source, p.Target)
}

// dealer is a work list of pairs: a pair is handed out once, and never
// after it was marked done.
type dealer struct {
	needs []Pair
	done  map[Pair]struct{}
}

func (d *dealer) need(src, dst reflect.Type) {
	pair := Pair{Source: src, Target: dst}
	if _, exists := d.done[pair]; exists {
		return
	}

	for _, p := range d.needs {
		if p == pair {
			return
		}
	}

	d.needs = append(d.needs, pair)
}

func (d *dealer) markDone(src, dst reflect.Type) {
	if d.done == nil {
		d.done = make(map[Pair]struct{})
	}

	d.done[Pair{Source: src, Target: dst}] = struct{}{}
}

func (d *dealer) next() (Pair, bool) {
	for len(d.needs) > 0 {
		pair := d.needs[0]
		d.needs = d.needs[1:]

		if _, exists := d.done[pair]; !exists {
			d.markDone(pair.Source, pair.Target)

			return pair, true
		}
	}

	return Pair{}, false
}
