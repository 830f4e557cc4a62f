// Package supervisor runs the device lifecycle.
//
// The Supervisor checks the SIM and the network, drives the pairing
// session until the device is authenticated, then starts the monitors
// and the call task through a Registry. A critical battery pauses every
// task except the threshold monitor; recovery restarts them. Losing
// connectivity cancels everything and the cycle starts again.
//
// The Registry guarantees a task name runs at most once; Cancel waits
// for the task to return, so a cancelled call has hung up before the
// supervisor moves on.
package supervisor
