// Package rate implements fixed-window Redis counters for login and rotation
// throttling.
package rate
