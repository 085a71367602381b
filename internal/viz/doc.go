// Package viz renders sweep progress and results in the terminal.
//
//   - [ProgressModel]: Bubble Tea model showing completed measurements
//   - [Display]: runs the model and adapts it to a progress observer
//   - [PlotObservables]: asciigraph charts of dE, I and X against T
//
// # Key Bindings
//
//	q / Ctrl+C - hide the progress display (the sweep keeps running)
package viz
