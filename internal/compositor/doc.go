// Package compositor renders captions onto template images.
//
// Each caption is fitted into its box by searching font sizes downward until
// the wrapped text fits the box, then drawn left-aligned from the box top
// with a black outline under a white fill. Rendering is a pure function of
// the inputs; the same image, captions and boxes always produce the same
// output.
package compositor
