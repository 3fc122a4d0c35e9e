// Package factory provides a generic registry used to build pluggable
// modules (algorithms, routers, metrics sinks) from their type name and raw
// configuration.
package factory
