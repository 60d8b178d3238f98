// Package processing implements the audio transformation pipeline: sample
// rate conversion, channel mixing, loudness normalization, and silence
// detection over decoded PCM buffers.
//
// Stages run in a fixed order (resample, mix, normalize, detect silence) and
// each stage is skipped when its configuration is absent. The pipeline is a
// pure function of its inputs; failures are tagged with the stage that
// produced them.
package processing
