// Package dogm implements the particle-based Dynamic Occupancy Grid Map
// (DOGM) update pipeline: measurement-grid construction from fused
// LiDAR/Radar returns, particle prediction, sort-and-segment assignment,
// Dempster-Shafer occupancy combination, likelihood-weighted
// re-normalisation, birth sampling and joint resampling.
//
// The package does not read sensor files, render imagery, or parse CLI
// flags — those concerns live in sibling packages (internal/sensorcsv,
// internal/dogmviz, internal/dogmconfig, cmd/dogm) that consume or
// produce the types defined here.
package dogm
