// Package types defines the entity types, flexible-field decoding, store
// interfaces and standard errors shared by the showcase packages.
//
// Entities mirror the rows of the hosted table service: projects,
// certificates and comments. Stores are described by small interfaces so
// the fetcher and submitter can run against fakes in tests.
package types
