// Package core provides the streaming transformation pipeline that turns raw
// literature-database dumps into processed content tables.
//
// This package has no database or UI dependencies. Collaborators that touch
// the outside world (decompression, paragraph extraction) are passed in as
// interfaces, so the pipeline can be driven by the CLI, tests, or any other
// frontend without modification.
//
// # Architecture
//
// A run is a single sequential loop over chunks of the input table:
//
//  1. [ComputeSkip] derives how many input rows are already reflected in the
//     output file (or deletes the output for a fresh run).
//  2. [OpenChunks] reads the raw table forward in fixed-size windows after
//     skipping that prefix.
//  3. A [RowTransformer] decodes, decompresses and restructures each row. For
//     the fulltext shape the rows of a chunk are fanned out with [OrderedMap].
//  4. [AppendChunk] appends the whole transformed chunk to the output in one
//     write, emitting the header only when the file is new.
//
// Only one chunk is in flight at a time, so memory is bounded by chunk size
// rather than table size.
//
// # Shapes
//
// Two table shapes are registered at init time, see [Shapes]:
//
//   - abstracts: (ref_id, content_id_primary, content_id_secondary, title_hex, abstract_hex)
//   - fulltexts: (ref_id, content_id, fulltext_hex)
//
// Both produce the same processed layout:
// (ref_id, content_id_primary, content_id_secondary, category, content).
//
// # Resume
//
// There is no checkpoint file. The number of data rows already present in
// the output is the number of input rows to skip. This holds because each
// chunk is appended with a single write followed by fsync, so a halted run
// leaves header + N whole chunks.
//
// # Error Handling
//
// Row failures are fatal to the chunk and to the run: nothing from the
// failing chunk is written. Errors are typed ([DecodeError],
// [ExtractionError], [DataFormatError], [SourceUnavailableError],
// [ResumeInconsistencyError]) and mapped to support codes with [MapError].
package core
