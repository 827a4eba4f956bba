package synth

// Combine exposes combine for testing.
var Combine = combine

// Flatten exposes flatten for testing.
var Flatten = flatten
