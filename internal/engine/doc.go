// Package engine contains the temporal simulation core of CiudadGemela.
//
// The Simulator owns the live statistics record, the frozen baseline it
// was constructed with, the applied-scenario history and the simulated
// clock. Time stepping is a cooperative loop: one simulated year per
// iteration, a pacing sleep between iterations, cancellation observed
// only at iteration boundaries.
//
// ARCHITECTURAL RULE: the engine never renders or rates anything. It
// mutates statistics and emits SimEvents; the rules package derives the
// human-facing views from whatever the engine left behind.
package engine
