// Package harness runs fixtures through the trigger detector under test and
// reports how its classifications compare to the labels the markers encode.
//
// # Pipeline
//
// For every fixture, in the order its Source returns them:
//
//  1. scan the text for markers (fixture.New)
//  2. synthesize one event per marker (synth.All)
//  3. classify each event, in marker order (detector.Adapter)
//  4. record a RunResult comparing the answer with the expected label
//
// A fixture whose markers cannot be scanned or synthesized yields a single
// failed RunResult and no detector calls. Other fixtures are unaffected.
// Fixtures may run concurrently (Options.Jobs); results are always reported
// in fixture order, then marker order.
//
// # Suite Format
//
// Suites are YAML files:
//
//	name: samples
//	description: "What this suite covers"
//	fixtures:
//	  - js/paste-trigger.js
//	  - js/accept-trigger.js
//	jobs: 2
//	deadline: 30s
//	detector_timeout: 2s
//	detector:
//	  kind: heuristic   # or exec, with command: [argv...]
//
// # Golden Files
//
// Snapshot renders a Report as canonical JSON without its run ID. Golden
// files live in testdata/golden/{name}.golden; regenerate them with
//
//	go test ./internal/harness -update
package harness
