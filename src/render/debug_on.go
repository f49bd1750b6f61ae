//go:build debug

package render

// debugBuild enables the validation layer and the debug report channel.
const debugBuild = true
