// Package expand materializes symbol instances into concrete subtrees.
//
// An [Expander] works on private copies of a design document and its layout
// rules. [Expander.Run] walks the pages and the referenced masters depth
// first; every symbol instance it meets receives a deep copy of its
// master's children, nested instances are expanded inside the copy, and the
// copied ids are made unique by prefixing them with the ids of the enclosing
// instances joined by "__":
//
//	page
//	└── card              (instance of Card)
//	    ├── card__title
//	    └── card__button  (instance of Button, expanded inside Card)
//	        └── card__button__label
//
// Each copied object also receives a copy of its master-side layout rule
// under the prefixed id, and an instance's own rule is merged over its
// master's.
//
// Overrides are applied once the copy is in place, in a fixed order: master
// swaps first, because they replace the subtree later overrides address;
// then variable assignments and variable references; then rule overrides;
// then size changes; then every remaining field write. Dirty auto-layout
// containers are re-laid out once per instance at the end.
//
// An expanded instance keeps its position in the tree but becomes a symbol
// master whose name ends in ";expanded_instance". Running an [Expander]
// over a document without unexpanded instances returns it unchanged.
//
// Lookup failures never abort a run: a missing master leaves its instance
// unexpanded, an override whose target cannot be found is skipped, and an
// instance that would contain itself is left unexpanded. Each of these is
// logged and counted in [Stats].
package expand
