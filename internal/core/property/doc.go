// Package property merges flat configuration sources and rebuilds the
// nested structure their keys describe.
//
// A flat key is a dotted path whose segments may carry array indices:
//
//	server.port
//	server.ssl.protocols[0]
//	matrix[1][2].name
//
// Two operations make up the package:
//
//  1. Combine takes sources ordered by ascending precedence and returns
//     one FlatMap. Plain keys resolve individually; indexed keys are
//     replaced as a whole group per base key by the highest source that
//     defines any of them.
//  2. Build parses every key of a FlatMap, in order, and inserts its value
//     into a Tree of Objects, Arrays and Scalars. Array gaps hold Absent.
//     When a key descends through a slot that already holds a leaf
//     ("logging.level" then "logging.level.org.example"), the rest of the
//     key is kept as a single literal key next to that leaf.
//
// Both are pure functions of their input and may run concurrently on
// different inputs. Neither logs; Build fails fast with *InvalidKeyError.
package property
