// Package scene holds the visual side of the sandbox: shared geometries and
// materials, meshes that reference them, and the perspective camera with its
// orbit controller.
//
// Meshes never own their geometry or material. Many meshes point at the same
// unit geometry and differ only by transform and scale, so mutating a shared
// Geometry changes every mesh built from it.
package scene
