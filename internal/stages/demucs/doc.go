// Package demucs separates a mixed audio asset into vocal and instrumental
// stems by running the bundled Demucs helper script through python.
package demucs
