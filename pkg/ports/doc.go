/*
Package ports defines the driven-port interfaces of the bethe engine.

The self-consistency core talks to every external collaborator (the
impurity-solver pipeline, the Kramers-Kronig tool, the initial-guess
generator, the series files on disk, and the trace/run stores) only through
these interfaces. Adapters live under pkg/adapters.
*/
package ports
