package identity

import (
	id "cbso/pkg/domain"
)

// ResolvedPerson pairs a durable identifier with the merged record bound to
// it so far.
type ResolvedPerson struct {
	ID     id.PersonID
	Record Person
}

// ResolvedEntity pairs a durable identifier with the merged entity record.
type ResolvedEntity struct {
	ID     id.EntityID
	Record Entity
}

type personBinding struct {
	id     id.PersonID
	record Person
}

// PersonResolver binds observed natural persons to durable identifiers.
// Run-scoped: one resolver per company accumulation pass, never shared.
type PersonResolver struct {
	index   *FuzzyIndex
	bound   map[PersonKey]personBinding
	unkeyed []personBinding
}

// NewPersonResolver builds a resolver over an empty fuzzy index.
func NewPersonResolver(sim Similarity) *PersonResolver {
	return &PersonResolver{
		index: NewFuzzyIndex(sim),
		bound: map[PersonKey]personBinding{},
	}
}

// Resolve binds the candidate to a previously seen identity or mints a new
// durable identifier. The second return reports whether an identity was
// minted.
//
// All-empty keys always mint: collapsing every unknown-name person into one
// identity would be worse than never matching them. On a fuzzy hit the
// candidate inherits the matched key's identifier and the bound record is
// re-merged under the rule that later non-null attributes supersede earlier
// ones while nulls never overwrite.
func (r *PersonResolver) Resolve(candidate Person) (id.PersonID, bool) {
	key := BuildPersonKey(candidate)
	if key.IsEmpty() {
		b := personBinding{id: id.NewPersonID(), record: candidate}
		r.unkeyed = append(r.unkeyed, b)
		return b.id, true
	}

	if existing, ok := r.index.Find(key); ok {
		b := r.bound[existing]
		b.record = MergePerson(b.record, candidate)
		r.bound[existing] = b
		return b.id, false
	}

	b := personBinding{id: id.NewPersonID(), record: candidate}
	r.index.Insert(key)
	r.bound[key] = b
	return b.id, true
}

// Seed preloads previously persisted key bindings for cross-run identity
// reuse. Not exercised by the per-run pipeline.
func (r *PersonResolver) Seed(bindings map[PersonKey]ResolvedPerson) {
	keys := make([]PersonKey, 0, len(bindings))
	for key, rp := range bindings {
		keys = append(keys, key)
		r.bound[key] = personBinding{id: rp.ID, record: rp.Record}
	}
	r.index.Seed(keys)
}

// Persons returns one merged record per resolved identity, indexed keys in
// first-observation order followed by the unkeyed (all-empty) identities.
func (r *PersonResolver) Persons() []ResolvedPerson {
	out := make([]ResolvedPerson, 0, len(r.index.keys)+len(r.unkeyed))
	for _, key := range r.index.keys {
		b, ok := r.bound[key]
		if !ok {
			continue
		}
		out = append(out, ResolvedPerson{ID: b.id, Record: b.record})
	}
	for _, b := range r.unkeyed {
		out = append(out, ResolvedPerson{ID: b.id, Record: b.record})
	}
	return out
}

type entityBinding struct {
	id     id.EntityID
	record Entity
}

// EntityResolver binds observed legal entities to durable identifiers by
// exact key equality on (registry number, country code). Identical contract
// shape to PersonResolver with a simpler matching rule.
type EntityResolver struct {
	order []EntityKey
	bound map[EntityKey]entityBinding
}

// NewEntityResolver builds an empty entity resolver.
func NewEntityResolver() *EntityResolver {
	return &EntityResolver{bound: map[EntityKey]entityBinding{}}
}

// Resolve binds the candidate entity to its identity, minting on first
// observation. Later observations merge attributes under the same
// null-never-overwrites rule as persons.
func (r *EntityResolver) Resolve(candidate Entity) (id.EntityID, bool) {
	key := BuildEntityKey(candidate)
	if b, ok := r.bound[key]; ok {
		b.record = MergeEntity(b.record, candidate)
		r.bound[key] = b
		return b.id, false
	}

	b := entityBinding{id: id.NewEntityID(), record: candidate}
	r.order = append(r.order, key)
	r.bound[key] = b
	return b.id, true
}

// Entities returns one merged record per resolved identity in
// first-observation order.
func (r *EntityResolver) Entities() []ResolvedEntity {
	out := make([]ResolvedEntity, 0, len(r.order))
	for _, key := range r.order {
		b := r.bound[key]
		out = append(out, ResolvedEntity{ID: b.id, Record: b.record})
	}
	return out
}
