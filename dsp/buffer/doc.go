// Package buffer provides planar multichannel sample buffers sized once and
// reused across blocks, plus block-level gain and crossfade helpers backed by
// algo-vecmath kernels.
//
// A [Buffer] owns one contiguous backing array; its channel views are
// resliced in place so that changing the active length never allocates.
package buffer
