// Package mqtt publishes run results and progress events with Eclipse Paho.
package mqtt
