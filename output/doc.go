// Package output discovers display devices from a backend, activates
// them in their preferred mode and renders a frame to each one every
// time the device asks for one.
//
// Everything in the package runs on the display's dispatch goroutine.
// Backends deliver device, frame and removal events one at a time and
// the handlers run to completion, so none of the types here lock.
package output
