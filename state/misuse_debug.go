//go:build statedebug

package state

// strictMisuse turns programming errors such as updating a disposed machine
// into panics.
const strictMisuse = true
