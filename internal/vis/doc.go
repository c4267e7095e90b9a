// Package vis shapes statistics into the payloads a visualisation layer consumes:
// histograms of values with their summary statistics, heatmaps of matrices and tables.
// Nothing in here draws, the payloads are plain values.
package vis
