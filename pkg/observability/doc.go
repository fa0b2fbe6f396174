/*
Package observability provides ready-made observers for a Bine collection.

It includes a Prometheus bridge exporting mutation counters and the live
collection length, and a structured-logging bridge tracing every emitted
change. Both attach through the collection's public subscription API and
detach via the returned subscription.
*/
package observability
