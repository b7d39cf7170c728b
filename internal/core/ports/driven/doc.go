// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SlamConfigurator: Rewrites the external program's configuration
//   - ProgramRunner: Launches the external program and reports its outcome
//   - ArtifactHarvester: Relocates the program's output artifacts
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - TrialStore: Trial history persistence. Without it, outcomes are only
//     reported on the console.
//   - ReportRenderer: Comparison chart output. Without it, analysis prints
//     the table only.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
