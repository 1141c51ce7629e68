//go:build !statedebug

package state

const strictMisuse = false
