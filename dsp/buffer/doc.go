// Package buffer provides the residual sample buffer used by streaming
// analyses. Samples are appended at the back as audio arrives and discarded
// from the front once consumed, so the backing array is reused and memory
// stays bounded by the largest backlog rather than the stream length.
package buffer
