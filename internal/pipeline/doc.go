// Package pipeline provides a framework for executing grading steps in
// sequence.
//
// The pipeline pattern is used to process submissions through multiple
// stages: fingerprinting, opening the workbooks, sheet verification,
// per-region grading, and finalization. Each stage is implemented as a
// Step that receives the current report and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running batch runs
// 4. It records which steps ran on the report for later inspection
//
// The pipeline supports both individual submissions and batch processing
// with concurrency control using errgroup.
package pipeline
