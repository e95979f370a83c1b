// Package logger provides a small leveled logger shared by the generator,
// the batch runner and the workload server.
//
// Each entry carries a timestamp, a level, an optional component tag and
// the message. The default logger writes to stderr so that workloads can
// be streamed to stdout without interleaving.
//
//	logger.Info("generator", "Generating a workload with %d keys", n)
//	logger.Error("", "failed: %v", err)
//
// Custom loggers are created with New:
//
//	l := logger.New(&buf, logger.LevelDebug)
//	l.Debug("batch", "queued %s", name)
//
// For binds a component tag once. Scoped loggers nest, so a workload
// generated by the batch runner logs as "batch/<name>" and a stream served
// by the API as "api/<name>":
//
//	log := logger.For("batch").For(name)
//	log.Info("Using seed %d", seed)
//
// All methods are safe for concurrent use.
package logger
