// Package sim provides the annual, event-driven microsimulation kernel for urban-sim.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event.go: event types and the immutable Event proposal (ids only)
//   - model.go: the EventModel and AnnualListener contracts
//   - scheduler.go: the yearly prepare / shuffle / process / finish cycle
//
// # Architecture
//
// The sim package defines the kernel; domain behavior lives in sub-packages:
//   - sim/registry/: entity arena, vacancy index, quality-share tracker
//   - sim/housing/: dwelling search, price curve, renovation, construction, relocation
//   - sim/lifecourse/: demographic, mobility and labour events plus aging
//   - sim/accessibility/, sim/economy/: annual listeners
//   - sim/results/: result sinks (log, SQLite, OpenTelemetry)
//   - sim/trace/: event outcome trace
//   - sim/synth/: synthetic population loader
//   - sim/scenario/: wires a Properties file into a ready Scheduler
//
// # Determinism
//
// One seeded stream (SubsystemEvents) shuffles each year's pooled proposals
// and feeds every HandleEvent draw. Models enumerate entities in ascending id
// order when proposing, so a run is reproducible from its seed and initial
// registry alone.
package sim
