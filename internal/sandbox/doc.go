// Package sandbox keeps a physics world and its visual scene in step.
//
// Every spawned object is an ObjectPair: a physics body and the mesh that
// shows it. The ShapeFactory builds both halves, adds them to the world and
// the scene, and only then records the pair in the Registry. Each call to
// FrameLoop.RunFrame advances the clock, steps the world with a fixed
// timestep, and copies every body's position and orientation onto its mesh
// before rendering.
//
// # Concurrency
//
// A Simulation serializes spawns against frames with a single mutex, so a
// spawn either completes before a frame starts or waits for it to finish.
// Metrics and observers run inside the frame and must not spawn.
package sandbox
