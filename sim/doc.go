// Package sim provides the simulation engine for temporal and spatial point processes.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - sampling.go: homogeneous points, 1D/2D rejection sampling, the general Poisson-process generator
//   - process1d.go, process2d.go: the concrete process variants
//   - sepp.go: the branching simulator and the conditional intensity of self-exciting processes
//
// # Architecture
//
// Every sampler takes a *Stream, the explicit randomness handle. There is no
// package-level generator: a run is reproduced by seeding the *rand.Rand behind the
// stream, usually through PartitionedRNG. Streams also carry Limits, the only guard
// against rejection loops and branching cascades that do not terminate.
//
// Process instances are immutable. Simulate returns a fresh slice on every call;
// self-exciting processes return a Realization that is passed back explicitly to
// ConditionalIntensity.
//
// Sub-packages:
//   - sim/scenario/: YAML scenario files
//   - sim/trials/: repeated independent trials and their summary statistics
//
// # Key Interfaces
//
//   - Process1D: Intensity, Simulate, Parameters for temporal processes
//   - Process2D: the same for processes on a rectangle
//   - BranchingProcess: a Process1D that also exposes generations and parent links
//   - Kind: a process type descriptor; Compose pairs any background with any trigger
package sim
