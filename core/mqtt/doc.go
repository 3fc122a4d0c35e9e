// Package mqtt defines what the pipeline publishes to an MQTT broker. The
// Paho based implementation lives in infra/mqtt.
package mqtt
