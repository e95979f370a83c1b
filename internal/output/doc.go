// Package output provides line sinks for generated workloads.
//
// FileSink opens its file lazily on the first line through an afero.Fs, so
// tests can run against an in-memory filesystem and an aborted run before
// the first line never creates a file. Paths ending in ".zst" are written
// as a zstd stream. WriterSink buffers lines to any io.Writer, typically
// stdout when the output path is "-".
package output
