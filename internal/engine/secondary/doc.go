// Package secondary resolves dual-role keystrokes: keys that type a
// character when tapped but act as a layer switcher or modifier when held.
//
// While a dual-role key's question is open the resolver answers DontKnowYet,
// which the engine translates into postponing the rest of the key stream.
// The question closes when another key's press shows up behind the dual-role
// key (hold wins), when the dual-role key's own release shows up first (tap
// wins), or when the hold timeout expires (hold wins).
package secondary
