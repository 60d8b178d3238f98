// Package audio defines the PCM sample buffer shared by the decoder and the
// processing pipeline.
package audio
