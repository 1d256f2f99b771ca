// Package files discovers convertible inputs on disk for batch conversion.
//
//	discovery := files.NewDiscovery("")
//	inputs, err := discovery.FindInputs("exports/weekly")
//
// Inputs are returned in name order so batch runs are reproducible.
package files
