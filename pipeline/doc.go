// Package pipeline composes independent intcode machines into amplifier
// networks.
//
// Each stage owns a private copy of the program, its own machine and an I/O
// handler. Stages are linked by unbounded single-producer/single-consumer
// queues: stage k's output queue is stage k+1's input queue. An open chain
// runs its stages one after another; a feedback ring closes the last queue
// back into the first stage and runs every stage on its own goroutine so
// that producers and consumers can interleave.
//
// Phase settings are injected by pushing each stage's phase onto its input
// queue before any stage starts; the seed value follows the phase on the
// first stage's queue.
package pipeline
