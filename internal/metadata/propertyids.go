package metadata

import "github.com/google/uuid"

// propertyIDs is the fixed, enumerated propertyId per module kind
// reported by the debug server. These are protocol constants, not
// project-specific identifiers.
var propertyIDs = map[ModuleKind]uuid.UUID{
	KindObjectModule:             uuid.MustParse("a1000000-0000-0000-0000-000000000001"),
	KindManagerModule:            uuid.MustParse("a1000000-0000-0000-0000-000000000002"),
	KindFormModule:               uuid.MustParse("a1000000-0000-0000-0000-000000000003"),
	KindCommandModule:            uuid.MustParse("a1000000-0000-0000-0000-000000000004"),
	KindRecordSetModule:          uuid.MustParse("a1000000-0000-0000-0000-000000000005"),
	KindManagedAppModule:         uuid.MustParse("a1000000-0000-0000-0000-000000000006"),
	KindSessionModule:            uuid.MustParse("a1000000-0000-0000-0000-000000000007"),
	KindExternalConnectionModule: uuid.MustParse("a1000000-0000-0000-0000-000000000008"),
	KindOrdinaryAppModule:        uuid.MustParse("a1000000-0000-0000-0000-000000000009"),
	KindCommonModule:             uuid.MustParse("a1000000-0000-0000-0000-00000000000a"),
}

func propertyIDFor(kind ModuleKind) uuid.UUID {
	return propertyIDs[kind]
}

func moduleKindForPropertyID(id uuid.UUID) (ModuleKind, bool) {
	for k, v := range propertyIDs {
		if v == id {
			return k, true
		}
	}
	return 0, false
}
