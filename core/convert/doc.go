// Package convert turns timetable export rows into deduplicated weekly
// sessions.
//
// A conversion runs in three stages owned by a BuildContext:
//
//   - the Normalizer turns a RawRecord into a Descriptor or a SkipReason;
//   - the Deduplicator folds descriptors sharing a SessionKey into one
//     Session carrying the union of their week numbers;
//   - the Aggregator infers parent groups per subject (a group whose name is
//     a prefix of another group's name), clones parent sessions into their
//     children and drops the parents.
//
// The final list is returned in canonical order so repeated runs over the
// same input produce identical output.
package convert
