// Package overlay draws detected face regions on a transparent layer that
// sits on top of the displayed image.
//
// The layer (Canvas) is always exactly the size of the displayed image.
// Regions are expected in display space; anything outside the layer is
// clipped, never rejected. Boxes are drawn in the order received, each in a
// stable palette colour with its 1-based index as a label.
package overlay
