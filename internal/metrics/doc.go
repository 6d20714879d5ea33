// Package metrics records build and stage metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites. PrometheusRecorder
// registers its collectors on a private registry; since buildproj is a
// short-lived CLI the registry is exported through the node_exporter
// textfile format (WriteTextfile) rather than an HTTP endpoint.
package metrics
