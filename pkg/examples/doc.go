// Package examples provides reference owner types demonstrating how to make
// properties observable with the kvo package.
//
// The example implementations show:
//   - Declaring package-level property keys
//   - Binding a proxy to its owner at construction
//   - Bracketing every mutation with WillChange/DidChange
//   - Notifying derived properties together with their inputs
//   - One owner observing another (HeatPump follows a Thermostat)
//
// Available examples:
//   - Thermostat: target/current temperature, mode and derived heating demand
//   - HeatPump: a consumer that switches on and off with a thermostat
//
// These examples can serve as templates for real observable types.
package examples
