package session

// expandedAutoAttachTypes maps a coarse launch-argument type name to
// the full set of server-reported targetType values it should match.
// "Client" and "Server" are convenience aliases; every other name is
// passed through unchanged.
var expandedAutoAttachTypes = map[string][]string{
	"Client": {"Client", "ManagedClient", "WebClient", "MobileClient"},
	"Server": {"Server", "ServerEmulation", "MobileServer"},
}

// ExpandAutoAttachTypes turns the launch argument's autoAttachTypes
// list into the flat set of concrete targetType strings a target must
// match to be auto-attached.
func ExpandAutoAttachTypes(types []string) map[string]bool {
	out := map[string]bool{}
	for _, t := range types {
		if expanded, ok := expandedAutoAttachTypes[t]; ok {
			for _, e := range expanded {
				out[e] = true
			}
			continue
		}
		out[t] = true
	}
	return out
}

// autoAttachMatches reports whether targetType qualifies for
// auto-attach given the expanded type set. An empty set matches
// nothing -- auto-attach is opt-in.
func autoAttachMatches(allowed map[string]bool, targetType string) bool {
	return allowed[targetType]
}
