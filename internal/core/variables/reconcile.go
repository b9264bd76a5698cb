package variables

import "slices"

// Reconcile derives the authoritative definition list for the extracted keys.
//
// Output follows the order of keys. A key with an existing definition keeps it
// unchanged; a new key gets NewDefinition. Existing definitions whose key is
// no longer referenced are dropped, so callers that want to keep them must
// snapshot the result of Dropped first.
func Reconcile(existing []Definition, keys []string) []Definition {
	byKey := indexByKey(existing)

	out := make([]Definition, 0, len(keys))
	emitted := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := emitted[key]; ok {
			continue
		}
		emitted[key] = struct{}{}

		if def, ok := byKey[key]; ok {
			def.Options = slices.Clone(def.Options)
			out = append(out, def)
			continue
		}
		out = append(out, NewDefinition(key))
	}
	return out
}

// Dropped returns the existing definitions that Reconcile would discard for
// keys, in their original order.
func Dropped(existing []Definition, keys []string) []Definition {
	referenced := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		referenced[key] = struct{}{}
	}

	var dropped []Definition
	for _, def := range existing {
		if _, ok := referenced[def.Key]; ok {
			continue
		}
		dropped = append(dropped, def)
	}
	return dropped
}

// Sync extracts the keys of text and reconciles existing against them.
func Sync(text string, existing []Definition) []Definition {
	return Reconcile(existing, Extract(text))
}

// indexByKey keeps the first definition seen for each key.
func indexByKey(defs []Definition) map[string]Definition {
	byKey := make(map[string]Definition, len(defs))
	for _, def := range defs {
		if _, ok := byKey[def.Key]; ok {
			continue
		}
		byKey[def.Key] = def
	}
	return byKey
}
