package value

import (
	"sort"
	"strings"
)

// Dict is the open-hash dictionary of spec.md §3.4/§4.4: separate chaining over a bucket
// array, FNV-1a hashing of the key's printed form, rehashing once the load factor exceeds
// 0.75. Keys are Values compared with Is (numeric promotion applies to dict keys same as
// anywhere else).
type Dict struct {
	buckets [][]dictEntry
	count   int
}

type dictEntry struct {
	key, val *Value
}

const dictInitialBuckets = 8
const dictMaxLoadFactor = 0.75

// NewDict builds an empty Dict.
func NewDict() *Value {
	return New(DICT, &Dict{buckets: make([][]dictEntry, dictInitialBuckets)}, 1)
}

// fnv1a hashes s using the 64-bit FNV-1a algorithm (spec.md §4.4).
func fnv1a(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i1 := 0; i1 < len(s); i1++ {
		h ^= uint64(s[i1])
		h *= prime64
	}
	return h
}

// keyString produces the hash/equality key for a Value: numeric keys are promoted to a
// common textual form so Is-equal INT/FLOAT keys collide into the same bucket slot.
func keyString(v *Value) string {
	if v.Tag == INT {
		return formatFloat(float64(v.Payload.(int64)))
	}
	if v.Tag == FLOAT {
		return formatFloat(v.Payload.(float64))
	}
	return v.Tag.String() + ":" + v.String()
}

func (d *Dict) bucketIndex(key *Value) int {
	return int(fnv1a(keyString(key)) % uint64(len(d.buckets)))
}

// Get looks up key, returning (value, true) on a hit.
func (d *Dict) Get(key *Value) (*Value, bool) {
	idx := d.bucketIndex(key)
	for _, e1 := range d.buckets[idx] {
		if Is(e1.key, key) {
			return e1.val.Retain(), true
		}
	}
	return nil, false
}

// Has reports whether key is present without retaining the value.
func (d *Dict) Has(key *Value) bool {
	idx := d.bucketIndex(key)
	for _, e1 := range d.buckets[idx] {
		if Is(e1.key, key) {
			return true
		}
	}
	return false
}

// Set installs key->val, replacing and releasing any prior value under an equal key, and
// rehashes if the load factor would exceed 0.75.
func (d *Dict) Set(key, val *Value) {
	idx := d.bucketIndex(key)
	for i1, e1 := range d.buckets[idx] {
		if Is(e1.key, key) {
			e1.key.Release()
			e1.val.Release()
			d.buckets[idx][i1] = dictEntry{key: key.Retain(), val: val.Retain()}
			return
		}
	}
	d.buckets[idx] = append(d.buckets[idx], dictEntry{key: key.Retain(), val: val.Retain()})
	d.count++
	if float64(d.count)/float64(len(d.buckets)) > dictMaxLoadFactor {
		d.rehash()
	}
}

func (d *Dict) rehash() {
	old := d.buckets
	d.buckets = make([][]dictEntry, len(old)*2)
	for _, chain := range old {
		for _, e1 := range chain {
			idx := d.bucketIndex(e1.key)
			d.buckets[idx] = append(d.buckets[idx], e1)
		}
	}
}

// Remove deletes key if present, releasing the owned key/value pair.
func (d *Dict) Remove(key *Value) bool {
	idx := d.bucketIndex(key)
	chain := d.buckets[idx]
	for i1, e1 := range chain {
		if Is(e1.key, key) {
			e1.key.Release()
			e1.val.Release()
			d.buckets[idx] = append(chain[:i1], chain[i1+1:]...)
			d.count--
			return true
		}
	}
	return false
}

// Merge returns a new Dict containing every entry of d overlaid by every entry of other
// (other wins on key collision), per spec.md §4.4's merge operation.
func Merge(d, other *Dict) *Value {
	out := NewDict()
	outDict := out.Payload.(*Dict)
	d.each(func(k, v *Value) { outDict.Set(k, v) })
	other.each(func(k, v *Value) { outDict.Set(k, v) })
	return out
}

// Keys returns a List of d's keys in a stable (sorted-by-print-form) order so iteration is
// deterministic for tests and for the `keys`/`values`/`map`/`filter` combinators.
func (d *Dict) Keys() *Value {
	var keys []*Value
	d.each(func(k, _ *Value) { keys = append(keys, k.Retain()) })
	sortValues(keys)
	return NewList(keys)
}

// Values returns a List of d's values, ordered to match Keys.
func (d *Dict) Values() *Value {
	type kv struct {
		k, v *Value
	}
	var pairs []kv
	d.each(func(k, v *Value) { pairs = append(pairs, kv{k, v.Retain()}) })
	sort.Slice(pairs, func(i, j int) bool { return keyString(pairs[i].k) < keyString(pairs[j].k) })
	out := make([]*Value, len(pairs))
	for i1, p := range pairs {
		out[i1] = p.v
	}
	return NewList(out)
}

func sortValues(vs []*Value) {
	sort.Slice(vs, func(i, j int) bool { return keyString(vs[i]) < keyString(vs[j]) })
}

func (d *Dict) each(fn func(k, v *Value)) {
	for _, chain := range d.buckets {
		for _, e1 := range chain {
			fn(e1.key, e1.val)
		}
	}
}

// Each exposes read-only iteration to the combinator lowering and interpreted fallback.
func (d *Dict) Each(fn func(k, v *Value) error) error {
	for _, chain := range d.buckets {
		for _, e1 := range chain {
			if err := fn(e1.key, e1.val); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Dict) equal(other *Dict) bool {
	if d.count != other.count {
		return false
	}
	equal := true
	d.each(func(k, v *Value) {
		ov, ok := other.Get(k)
		if !ok || !Is(v, ov) {
			equal = false
		}
		ov.Release()
	})
	return equal
}

func (d *Dict) releaseAll() {
	for _, chain := range d.buckets {
		for _, e1 := range chain {
			e1.key.Release()
			e1.val.Release()
		}
	}
}

func (d *Dict) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	var keys []*Value
	d.each(func(k, _ *Value) { keys = append(keys, k) })
	sortValues(keys)
	for _, k := range keys {
		if !first {
			b.WriteString(", ")
		}
		first = false
		v, _ := d.Get(k)
		b.WriteString(k.String())
		b.WriteString(": ")
		b.WriteString(v.String())
		v.Release()
	}
	b.WriteByte('}')
	return b.String()
}
