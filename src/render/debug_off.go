//go:build !debug

package render

const debugBuild = false
