// Package api serves generated workloads over HTTP and WebSocket.
//
// Routes:
//
//	GET /api/health   liveness probe
//	GET /api/status   active and total streams, event watchers
//	GET /api/presets  named parameter sets
//	WS  /ws/workload  send one JSON workload request, receive one text
//	                  frame per workload line, then a JSON summary frame
//	WS  /ws/events    receive every generation event as JSON
//
// A workload request uses the same fields as an entry of the batch config
// file (preset, num_keys, num_ops, percentage_reads, max_read_distance,
// seed, value_style, value_size). Workload lines never start with "{", so
// clients can tell the trailing summary apart from the stream.
package api
