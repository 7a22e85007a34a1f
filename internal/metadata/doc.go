// Package metadata resolves filesystem paths of 1C:Enterprise
// configuration source modules to the (objectId, propertyId,
// moduleType, extension, moduleIdString) descriptor the debug server
// reports breakpoints and stack frames against, and back.
package metadata
